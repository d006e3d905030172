package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"itsg33/internal/assessment/applicability"
	"itsg33/internal/assessment/coverage"
	"itsg33/internal/assessment/models"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/catalog"
	"itsg33/pkg/audit"
	dErrors "itsg33/pkg/domain-errors"
)

// Run processes a batch of documents against an assessment: resolve
// applicability on the first run, extract evidence from every document in
// parallel, fold the judgements into the accumulated evidence map, and
// recompute coverage preserving any prior overrides. Each completed run
// appends a snapshot to the run history.
func (s *Service) Run(ctx context.Context, id uuid.UUID, docs []ports.Document) (*models.Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("assessment.id", id.String()),
		attribute.Int("documents", len(docs)),
	)

	if s.extractor == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "evidence extractor is not configured")
	}
	if len(docs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	for i, d := range docs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("document %d is missing a name", i))
		}
		if strings.TrimSpace(d.Content) == "" {
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("document %q is empty", d.Name))
		}
	}

	start := s.now()

	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Mark running before the long extraction phase so status queries
	// reflect the in-flight run.
	if _, err := s.update(ctx, id, func(a *models.Assessment) error {
		a.Status = models.AssessmentRunning
		return nil
	}); err != nil {
		return nil, err
	}

	candidates := s.catalog.ForProfile(a.Profile)

	// On a reassessment, controls already settled as not applicable are
	// excluded from extraction: their evidence can never be classified.
	extractTargets := candidates
	if a.Coverage != nil && len(a.Coverage.NotApplicable) > 0 {
		na := make(map[string]struct{}, len(a.Coverage.NotApplicable))
		for _, e := range a.Coverage.NotApplicable {
			na[e.ControlID] = struct{}{}
		}
		extractTargets = make([]catalog.Control, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := na[c.ID]; ok {
				continue
			}
			extractTargets = append(extractTargets, c)
		}
	}

	// A failed document contributes zero judgements and a note; only a run
	// where every document failed is fatal.
	judgements, extractNotes, extractErr := s.extractAll(ctx, docs, extractTargets)
	if extractErr != nil {
		if _, err := s.update(ctx, id, func(a *models.Assessment) error {
			a.Status = models.AssessmentFailed
			return nil
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to mark assessment failed",
				"assessment_id", id, "error", err)
		}
		if s.metrics != nil {
			s.metrics.RunsFailed.Inc()
		}
		return nil, dErrors.Wrap(extractErr, dErrors.CodeUnavailable, "evidence extraction failed")
	}

	// Applicability is resolved once, on the assessment's first run.
	// Later runs keep the established partition; changing applicability
	// afterwards is a human call made through the override endpoints.
	var res applicability.Result
	firstRun := a.Coverage == nil
	if firstRun {
		res = s.resolveApplicability(ctx, a.SystemContext, candidates)
	}

	updated, err := s.update(ctx, id, func(a *models.Assessment) error {
		a.Evidence = coverage.Merge(a.Evidence, judgements)
		a.DocumentCount += len(docs)

		var cov models.AssessmentCoverage
		if a.Coverage == nil {
			cov = coverage.Compute(res.Applicable, res.NotApplicable, a.Evidence)
			cov.Notes = append(cov.Notes, res.Notes...)
		} else {
			cov = coverage.Reassess(a.Coverage, candidates, a.Evidence)
		}
		cov.Notes = append(cov.Notes, extractNotes...)
		if err := cov.CheckPartition(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "coverage partition violated")
		}

		a.Coverage = &cov
		a.Status = models.AssessmentCompleted
		a.RunHistory = append(a.RunHistory, models.RunRecord{
			RunID:         len(a.RunHistory) + 1,
			CompletedAt:   s.now(),
			DocumentCount: len(docs),
			Coverage:      cov.Clone(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := audit.ActionCoverageComputed
	if !firstRun {
		action = audit.ActionReassessed
	}
	s.emitAudit(ctx, audit.Event{
		AssessmentID: id,
		Action:       action,
		ToStatus:     string(updated.Status),
	})

	if s.metrics != nil {
		s.metrics.RunsCompleted.Inc()
		s.metrics.DocumentsProcessed.Add(float64(len(docs)))
		s.metrics.ObserveRun(start)
		s.metrics.CoveragePercentage.Observe(updated.Coverage.Summary.CoveragePercentage)
	}
	s.logger.InfoContext(ctx, "assessment run completed",
		"assessment_id", id,
		"run_id", len(updated.RunHistory),
		"documents", len(docs),
		"coverage_pct", updated.Coverage.Summary.CoveragePercentage,
		"duration", time.Since(start))
	return updated, nil
}

// extractAll fans document extraction out across a bounded worker group and
// returns all judgements in document order. A document whose extraction
// fails contributes no judgements and a degradation note; the returned error
// is non-nil only when every document failed.
func (s *Service) extractAll(ctx context.Context, docs []ports.Document, candidates []catalog.Control) ([]models.EvidenceJudgement, []string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.extractConcurrency)

	perDoc := make([][]models.EvidenceJudgement, len(docs))
	errs := make([]error, len(docs))
	for i, doc := range docs {
		g.Go(func() error {
			start := s.now()
			raw, err := s.extractor.ExtractEvidence(gctx, doc, candidates)
			if s.metrics != nil {
				s.metrics.ObserveExtraction(start)
			}
			if err != nil {
				errs[i] = err
				if s.metrics != nil {
					s.metrics.ExtractionFailures.Inc()
				}
				s.logger.WarnContext(gctx, "document extraction failed",
					"document", doc.Name, "error", err)
				return nil
			}
			perDoc[i] = s.sanitizeJudgements(gctx, doc.Name, raw, candidates)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.EvidenceJudgement
	var notes []string
	failed := 0
	for i, js := range perDoc {
		if errs[i] != nil {
			failed++
			notes = append(notes, fmt.Sprintf(
				"Evidence extraction failed for document %q; it contributed no evidence.", docs[i].Name))
			continue
		}
		all = append(all, js...)
	}
	if failed == len(docs) {
		return nil, nil, fmt.Errorf("all %d documents failed extraction, last: %w", len(docs), errs[len(docs)-1])
	}
	return all, notes, nil
}

// sanitizeJudgements converts raw extractor output to domain judgements,
// dropping anything referencing unknown controls or carrying an invalid
// coverage level. Out-of-range strength tiers are clamped to narrative
// rather than dropped.
func (s *Service) sanitizeJudgements(ctx context.Context, docName string, raw []ports.ExtractedJudgement, candidates []catalog.Control) []models.EvidenceJudgement {
	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	out := make([]models.EvidenceJudgement, 0, len(raw))
	for _, j := range raw {
		if _, ok := known[j.ControlID]; !ok {
			s.logger.WarnContext(ctx, "extractor referenced unknown control, dropping judgement",
				"document", docName, "control_id", j.ControlID)
			continue
		}
		level := models.CoverageLevel(j.CoverageLevel)
		if !level.IsValid() {
			s.logger.WarnContext(ctx, "extractor returned invalid coverage level, dropping judgement",
				"document", docName, "control_id", j.ControlID, "coverage_level", j.CoverageLevel)
			continue
		}
		out = append(out, models.EvidenceJudgement{
			ControlID:      j.ControlID,
			SourceDocument: docName,
			CoverageLevel:  level,
			StrengthTier:   models.StrengthTier(j.StrengthTier).Clamp(),
			Summary:        j.Summary,
			Excerpt:        j.Excerpt,
		})
	}
	return out
}

func (s *Service) resolveApplicability(ctx context.Context, systemContext string, candidates []catalog.Control) applicability.Result {
	if s.resolver == nil {
		return applicability.Result{Applicable: candidates}
	}
	return s.resolver.Resolve(ctx, systemContext, candidates, s.now())
}
