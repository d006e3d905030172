package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Classifier,EvidenceExtractor,AuditPort

import (
	"context"

	"itsg33/internal/catalog"
	"itsg33/pkg/audit"
)

// Document is a piece of compliance documentation submitted for analysis.
type Document struct {
	Name    string
	Content string
}

// ApplicabilityDecision is the classifier's verdict for one control.
type ApplicabilityDecision struct {
	ControlID string
	Reason    string
}

// Classifier decides which profile controls do not apply to a system,
// given a free-text description of its architecture and boundaries.
// Implementations must return only control IDs drawn from the candidate
// set; callers discard anything else.
type Classifier interface {
	ClassifyNotApplicable(ctx context.Context, systemContext string, candidates []catalog.Control) ([]ApplicabilityDecision, error)
}

// ExtractedJudgement is one control's evidence as read from a document.
type ExtractedJudgement struct {
	ControlID     string
	CoverageLevel string
	StrengthTier  int
	Summary       string
	Excerpt       string
}

// EvidenceExtractor reads a document and reports which controls it
// evidences. Results reference the source document by name; the caller
// merges them into the assessment's evidence map.
type EvidenceExtractor interface {
	ExtractEvidence(ctx context.Context, doc Document, candidates []catalog.Control) ([]ExtractedJudgement, error)
}

// AuditPort emits audit events. Matches audit.Publisher but is defined
// here so the service depends on the port, not the implementation.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
