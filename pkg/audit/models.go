// Package audit captures human-initiated and engine-initiated changes to
// assessment state. Overrides exist to correct the machine's judgment, so
// every one of them has to leave a trail a reviewer can replay later.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names a recorded change.
type Action string

const (
	ActionAssessmentCreated  Action = "assessment_created"
	ActionAssessmentPurged   Action = "assessment_purged"
	ActionCoverageComputed   Action = "coverage_computed"
	ActionReassessed         Action = "reassessed"
	ActionMarkedNotApplicable Action = "control_marked_not_applicable"
	ActionEvidenceRejected   Action = "control_evidence_rejected"
	ActionControlRestored    Action = "control_restored"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           uuid.UUID `json:"id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	ControlID    string    `json:"control_id,omitempty"`
	Action       Action    `json:"action"`
	Reason       string    `json:"reason,omitempty"`
	FromStatus   string    `json:"from_status,omitempty"`
	ToStatus     string    `json:"to_status,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]Event, error)
}
