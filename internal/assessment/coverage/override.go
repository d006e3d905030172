package coverage

import (
	"fmt"
	"strings"
	"time"

	"itsg33/internal/assessment/models"
	dErrors "itsg33/pkg/domain-errors"
)

// OverrideAction names a human-initiated state transition.
type OverrideAction string

const (
	ActionMarkNotApplicable OverrideAction = "mark_not_applicable"
	ActionRejectEvidence    OverrideAction = "reject_evidence"
	ActionRestore           OverrideAction = "restore"
)

// Transition is the outcome of an override: the rewritten coverage plus the
// movement details the audit trail needs.
type Transition struct {
	Coverage  models.AssessmentCoverage
	ControlID string
	From      models.CoverageStatus
	To        models.CoverageStatus
}

// MarkNotApplicable moves a control into the not-applicable list as a manual
// override. The entry may come from any list except not-applicable itself;
// prior rejection metadata is cleared, and the source list is recorded so the
// override can be undone. Aggregates are recomputed before returning.
func MarkNotApplicable(cov models.AssessmentCoverage, controlID, reason string, now time.Time) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, dErrors.New(dErrors.CodeValidation, "reason is required")
	}

	next := cov.Clone()
	entry, from, found := next.Find(controlID,
		models.StatusFullCoverage, models.StatusPartialCoverage,
		models.StatusNoCoverage, models.StatusRejectedEvidence)
	if !found {
		return Transition{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("control %s not found", controlID))
	}

	next.Remove(controlID, from)

	moved := entry.Clone()
	moved.RejectionReason = ""
	moved.RejectedFrom = ""
	moved.RejectedAt = nil
	moved.NotApplicableReason = reason
	moved.AutoDetermined = false
	moved.OriginStatus = from
	moved.MarkedAt = &now
	next.Append(moved, models.StatusNotApplicable)

	Recompute(&next)
	return Transition{Coverage: next, ControlID: controlID, From: from, To: models.StatusNotApplicable}, nil
}

// RejectEvidence moves a control with evidence into the rejected list.
// Rejecting requires evidence to exist, so only the full and partial lists
// are searched. The source list is recorded for restoration.
func RejectEvidence(cov models.AssessmentCoverage, controlID, reason string, now time.Time) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, dErrors.New(dErrors.CodeValidation, "reason is required")
	}

	next := cov.Clone()
	entry, from, found := next.Find(controlID,
		models.StatusFullCoverage, models.StatusPartialCoverage)
	if !found {
		return Transition{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("control %s not found in controls with evidence", controlID))
	}

	next.Remove(controlID, from)

	moved := entry.Clone()
	moved.RejectionReason = reason
	moved.RejectedFrom = from
	moved.RejectedAt = &now
	next.Append(moved, models.StatusRejectedEvidence)

	Recompute(&next)
	return Transition{Coverage: next, ControlID: controlID, From: from, To: models.StatusRejectedEvidence}, nil
}

// Restore undoes an override, returning a control to its prior list.
//
// From not-applicable: an auto-determined entry goes to no-coverage (the
// classifier never saw evidence for it); a manual override goes back to its
// recorded origin, defaulting to no-coverage. From rejected-evidence: the
// entry returns to the list it was rejected from, defaulting to partial.
// All override metadata is stripped so the entry is indistinguishable from
// one that was never overridden.
func Restore(cov models.AssessmentCoverage, controlID string) (Transition, error) {
	next := cov.Clone()
	entry, from, found := next.Find(controlID,
		models.StatusNotApplicable, models.StatusRejectedEvidence)
	if !found {
		return Transition{}, dErrors.New(dErrors.CodeNotFound,
			fmt.Sprintf("control %s not found in not applicable or rejected evidence", controlID))
	}

	var target models.CoverageStatus
	if from == models.StatusNotApplicable {
		switch {
		case entry.AutoDetermined:
			target = models.StatusNoCoverage
		case entry.OriginStatus != "":
			target = entry.OriginStatus
		default:
			target = models.StatusNoCoverage
		}
	} else {
		target = entry.RejectedFrom
		if target == "" {
			target = models.StatusPartialCoverage
		}
	}

	next.Remove(controlID, from)

	moved := entry.Clone()
	moved.NotApplicableReason = ""
	moved.AutoDetermined = false
	moved.OriginStatus = ""
	moved.MarkedAt = nil
	moved.RejectionReason = ""
	moved.RejectedFrom = ""
	moved.RejectedAt = nil
	next.Append(moved, target)

	Recompute(&next)
	return Transition{Coverage: next, ControlID: controlID, From: from, To: target}, nil
}

// Apply dispatches an override by action name. Restore ignores the reason.
func Apply(cov models.AssessmentCoverage, controlID string, action OverrideAction, reason string, now time.Time) (Transition, error) {
	switch action {
	case ActionMarkNotApplicable:
		return MarkNotApplicable(cov, controlID, reason, now)
	case ActionRejectEvidence:
		return RejectEvidence(cov, controlID, reason, now)
	case ActionRestore:
		return Restore(cov, controlID)
	}
	return Transition{}, dErrors.New(dErrors.CodeValidation,
		fmt.Sprintf("unknown override action %q", action))
}
