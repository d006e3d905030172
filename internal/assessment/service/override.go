package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"itsg33/internal/assessment/coverage"
	"itsg33/internal/assessment/models"
	"itsg33/pkg/audit"
	dErrors "itsg33/pkg/domain-errors"
)

// OverrideResult reports the transition the override caused plus the
// aggregates it produced, so callers can surface the new coverage without a
// second read.
type OverrideResult struct {
	Assessment *models.Assessment
	From       models.CoverageStatus
	To         models.CoverageStatus
}

// MarkNotApplicable excludes a control from scoring by human decision.
func (s *Service) MarkNotApplicable(ctx context.Context, id uuid.UUID, controlID, reason string) (*OverrideResult, error) {
	return s.applyOverride(ctx, id, controlID, coverage.ActionMarkNotApplicable, reason)
}

// RejectEvidence discards a control's extracted evidence by human decision.
func (s *Service) RejectEvidence(ctx context.Context, id uuid.UUID, controlID, reason string) (*OverrideResult, error) {
	return s.applyOverride(ctx, id, controlID, coverage.ActionRejectEvidence, reason)
}

// Restore undoes a prior override, returning the control to scoring.
func (s *Service) Restore(ctx context.Context, id uuid.UUID, controlID string) (*OverrideResult, error) {
	return s.applyOverride(ctx, id, controlID, coverage.ActionRestore, "")
}

func (s *Service) applyOverride(ctx context.Context, id uuid.UUID, controlID string, action coverage.OverrideAction, reason string) (*OverrideResult, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Override")
	defer span.End()
	span.SetAttributes(
		attribute.String("assessment.id", id.String()),
		attribute.String("control.id", controlID),
		attribute.String("override.action", string(action)),
	)

	var transition coverage.Transition
	updated, err := s.update(ctx, id, func(a *models.Assessment) error {
		if a.Coverage == nil {
			return dErrors.New(dErrors.CodeInvalidState,
				"assessment has no coverage yet, run it first")
		}
		t, err := coverage.Apply(*a.Coverage, controlID, action, reason, s.now())
		if err != nil {
			return err
		}
		if err := t.Coverage.CheckPartition(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "coverage partition violated")
		}
		transition = t
		a.Coverage = &t.Coverage
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		AssessmentID: id,
		ControlID:    controlID,
		Action:       auditAction(action),
		Reason:       reason,
		FromStatus:   string(transition.From),
		ToStatus:     string(transition.To),
	})
	if s.metrics != nil {
		s.metrics.IncrementOverride(string(action))
	}
	s.logger.InfoContext(ctx, "override applied",
		"assessment_id", id,
		"control_id", controlID,
		"action", string(action),
		"from", string(transition.From),
		"to", string(transition.To))

	return &OverrideResult{
		Assessment: updated,
		From:       transition.From,
		To:         transition.To,
	}, nil
}

func auditAction(action coverage.OverrideAction) audit.Action {
	switch action {
	case coverage.ActionMarkNotApplicable:
		return audit.ActionMarkedNotApplicable
	case coverage.ActionRejectEvidence:
		return audit.ActionEvidenceRejected
	default:
		return audit.ActionControlRestored
	}
}
