package applicability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"itsg33/internal/assessment/models"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/catalog"
)

// Result splits a profile's control set into applicable controls and
// pre-seeded not-applicable entries. Notes record any degradation that
// occurred while resolving.
type Result struct {
	Applicable    []catalog.Control
	NotApplicable []models.ControlCoverageEntry
	Notes         []string
}

// Resolver determines control applicability from the system context.
// It fails open: if the classifier errors, or returns decisions that
// reference unknown controls, the affected controls remain applicable
// rather than being silently excluded from the assessment.
type Resolver struct {
	classifier ports.Classifier
	logger     *slog.Logger
}

func NewResolver(classifier ports.Classifier, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{classifier: classifier, logger: logger}
}

// Resolve classifies the candidate controls against the system context.
// An empty system context skips classification entirely: with nothing to
// reason about, every control is applicable.
func (r *Resolver) Resolve(ctx context.Context, systemContext string, candidates []catalog.Control, now time.Time) Result {
	res := Result{Applicable: candidates}
	if strings.TrimSpace(systemContext) == "" || r.classifier == nil {
		return res
	}

	decisions, err := r.classifier.ClassifyNotApplicable(ctx, systemContext, candidates)
	if err != nil {
		r.logger.WarnContext(ctx, "applicability classification failed, treating all controls as applicable",
			"error", err)
		res.Notes = append(res.Notes,
			"Applicability classification was unavailable; all profile controls were assessed.")
		return res
	}

	byID := make(map[string]catalog.Control, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	na := make(map[string]string, len(decisions))
	for _, d := range decisions {
		if _, ok := byID[d.ControlID]; !ok {
			r.logger.WarnContext(ctx, "classifier returned unknown control, ignoring",
				"control_id", d.ControlID)
			res.Notes = append(res.Notes,
				fmt.Sprintf("Classifier flagged unknown control %s; decision ignored.", d.ControlID))
			continue
		}
		reason := strings.TrimSpace(d.Reason)
		if reason == "" {
			reason = "Determined not applicable from system context."
		}
		na[d.ControlID] = reason
	}

	if len(na) == 0 {
		return res
	}

	applicable := make([]catalog.Control, 0, len(candidates)-len(na))
	entries := make([]models.ControlCoverageEntry, 0, len(na))
	for _, c := range candidates {
		reason, ok := na[c.ID]
		if !ok {
			applicable = append(applicable, c)
			continue
		}
		markedAt := now
		entries = append(entries, models.ControlCoverageEntry{
			ControlID:           c.ID,
			ControlName:         c.Name,
			Family:              c.Family,
			Status:              models.StatusNotApplicable,
			NotApplicableReason: reason,
			AutoDetermined:      true,
			MarkedAt:            &markedAt,
		})
	}

	res.Applicable = applicable
	res.NotApplicable = entries
	return res
}
