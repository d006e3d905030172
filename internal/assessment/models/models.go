package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"itsg33/internal/catalog"
)

// EvidenceJudgement is one extraction result tying a document to a control.
// Judgements are immutable once recorded; a control accumulates many of them
// across documents and runs, and repetition is intentionally additive.
type EvidenceJudgement struct {
	ControlID      string        `json:"control_id"`
	SourceDocument string        `json:"source_document"`
	CoverageLevel  CoverageLevel `json:"coverage_level"`
	StrengthTier   StrengthTier  `json:"strength_tier"`
	Summary        string        `json:"summary"`
	Excerpt        string        `json:"excerpt,omitempty"`
}

// EffectiveScore weighs evidence strength by how completely it covers the
// control.
func (j EvidenceJudgement) EffectiveScore() float64 {
	return j.StrengthTier.Score() * j.CoverageLevel.Multiplier()
}

// EvidenceMap accumulates judgements per control.
type EvidenceMap map[string][]EvidenceJudgement

// Clone deep-copies the map so merge steps never mutate their input.
func (m EvidenceMap) Clone() EvidenceMap {
	out := make(EvidenceMap, len(m))
	for controlID, judgements := range m {
		out[controlID] = append([]EvidenceJudgement(nil), judgements...)
	}
	return out
}

// ControlCoverageEntry is a control's current classification plus the
// metadata needed to audit and undo overrides. Entries move between status
// lists only through the transition functions in the coverage package.
type ControlCoverageEntry struct {
	ControlID   string         `json:"control_id"`
	ControlName string         `json:"control_name"`
	Family      catalog.Family `json:"family"`
	Status      CoverageStatus `json:"status"`

	Evidence           []EvidenceJudgement `json:"evidence,omitempty"`
	BestStrengthTier   StrengthTier        `json:"best_strength_tier,omitempty"`
	BestEffectiveScore float64             `json:"best_effective_score,omitempty"`

	// Not-applicable metadata. AutoDetermined distinguishes the classifier's
	// call from a human override; OriginStatus remembers where a manual
	// override came from so restore can undo it.
	NotApplicableReason string         `json:"not_applicable_reason,omitempty"`
	AutoDetermined      bool           `json:"auto_determined,omitempty"`
	OriginStatus        CoverageStatus `json:"origin_status,omitempty"`
	MarkedAt            *time.Time     `json:"marked_not_applicable_at,omitempty"`

	// Rejected-evidence metadata.
	RejectionReason string         `json:"rejection_reason,omitempty"`
	RejectedFrom    CoverageStatus `json:"rejected_from,omitempty"`
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
}

// Clone returns a deep copy; transitions build new entries instead of
// mutating entries already placed in a list.
func (e ControlCoverageEntry) Clone() ControlCoverageEntry {
	out := e
	out.Evidence = append([]EvidenceJudgement(nil), e.Evidence...)
	if e.MarkedAt != nil {
		t := *e.MarkedAt
		out.MarkedAt = &t
	}
	if e.RejectedAt != nil {
		t := *e.RejectedAt
		out.RejectedAt = &t
	}
	return out
}

// Summary carries the derived aggregates. It is recomputed from the five
// lists on every change and never patched incrementally.
type Summary struct {
	TotalControls          int     `json:"total_controls"`
	FullCoverageCount      int     `json:"controls_with_evidence"`
	PartialCoverageCount   int     `json:"controls_partial"`
	NoCoverageCount        int     `json:"controls_missing"`
	NotApplicableCount     int     `json:"controls_not_applicable"`
	RejectedEvidenceCount  int     `json:"controls_rejected_evidence"`
	CoveragePercentage     float64 `json:"coverage_percentage"`
	QualityScore           float64 `json:"quality_score"`
	MachineVerifiableCount int     `json:"machine_verifiable_count"`
	HumanCuratedCount      int     `json:"human_curated_count"`
}

// AssessmentCoverage is the engine's unit of state: five disjoint status
// lists and the aggregates derived from them. The JSON shape is consumed by
// downstream reporting and must stay stable across recomputation.
type AssessmentCoverage struct {
	FullCoverage     []ControlCoverageEntry `json:"full_coverage"`
	PartialCoverage  []ControlCoverageEntry `json:"partial_coverage"`
	NoCoverage       []ControlCoverageEntry `json:"no_coverage"`
	NotApplicable    []ControlCoverageEntry `json:"not_applicable"`
	RejectedEvidence []ControlCoverageEntry `json:"rejected_evidence"`

	Summary         Summary  `json:"summary"`
	Recommendations []string `json:"recommendations,omitempty"`

	// Notes records recoverable degradations, e.g. an applicability
	// classifier failure that forced the fail-open default.
	Notes []string `json:"notes,omitempty"`
}

// Clone deep-copies the coverage object.
func (c AssessmentCoverage) Clone() AssessmentCoverage {
	out := c
	out.FullCoverage = cloneEntries(c.FullCoverage)
	out.PartialCoverage = cloneEntries(c.PartialCoverage)
	out.NoCoverage = cloneEntries(c.NoCoverage)
	out.NotApplicable = cloneEntries(c.NotApplicable)
	out.RejectedEvidence = cloneEntries(c.RejectedEvidence)
	out.Recommendations = append([]string(nil), c.Recommendations...)
	out.Notes = append([]string(nil), c.Notes...)
	return out
}

func cloneEntries(entries []ControlCoverageEntry) []ControlCoverageEntry {
	if entries == nil {
		return nil
	}
	out := make([]ControlCoverageEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// List returns the entries in the given status list.
func (c *AssessmentCoverage) List(status CoverageStatus) []ControlCoverageEntry {
	switch status {
	case StatusFullCoverage:
		return c.FullCoverage
	case StatusPartialCoverage:
		return c.PartialCoverage
	case StatusNoCoverage:
		return c.NoCoverage
	case StatusNotApplicable:
		return c.NotApplicable
	case StatusRejectedEvidence:
		return c.RejectedEvidence
	}
	return nil
}

func (c *AssessmentCoverage) setList(status CoverageStatus, entries []ControlCoverageEntry) {
	switch status {
	case StatusFullCoverage:
		c.FullCoverage = entries
	case StatusPartialCoverage:
		c.PartialCoverage = entries
	case StatusNoCoverage:
		c.NoCoverage = entries
	case StatusNotApplicable:
		c.NotApplicable = entries
	case StatusRejectedEvidence:
		c.RejectedEvidence = entries
	}
}

// AllStatuses enumerates the five lists in wire order.
func AllStatuses() []CoverageStatus {
	return []CoverageStatus{
		StatusFullCoverage, StatusPartialCoverage, StatusNoCoverage,
		StatusNotApplicable, StatusRejectedEvidence,
	}
}

// Find locates a control's entry, searching the given lists (all five when
// none are specified). Returns the containing status.
func (c *AssessmentCoverage) Find(controlID string, in ...CoverageStatus) (ControlCoverageEntry, CoverageStatus, bool) {
	if len(in) == 0 {
		in = AllStatuses()
	}
	for _, status := range in {
		for _, entry := range c.List(status) {
			if entry.ControlID == controlID {
				return entry.Clone(), status, true
			}
		}
	}
	return ControlCoverageEntry{}, "", false
}

// Remove deletes a control's entry from the given list, returning a new list.
func (c *AssessmentCoverage) Remove(controlID string, from CoverageStatus) {
	current := c.List(from)
	next := make([]ControlCoverageEntry, 0, len(current))
	for _, entry := range current {
		if entry.ControlID != controlID {
			next = append(next, entry)
		}
	}
	c.setList(from, next)
}

// Append places an entry at the end of the given list.
func (c *AssessmentCoverage) Append(entry ControlCoverageEntry, to CoverageStatus) {
	entry.Status = to
	c.setList(to, append(c.List(to), entry))
}

// CheckPartition verifies invariant I1: every control appears in exactly one
// of the five lists, no more, no less. A violation means persisted state was
// mutated outside the transition functions and the assessment needs manual
// repair.
func (c *AssessmentCoverage) CheckPartition() error {
	seen := make(map[string]CoverageStatus)
	for _, status := range AllStatuses() {
		for _, entry := range c.List(status) {
			if prior, dup := seen[entry.ControlID]; dup {
				return fmt.Errorf("control %s present in both %s and %s", entry.ControlID, prior, status)
			}
			seen[entry.ControlID] = status
		}
	}
	return nil
}

// RunRecord is one completed run snapshot kept in history. Snapshots are
// append-only and never mutated in place.
type RunRecord struct {
	RunID         int                `json:"run_id"`
	CompletedAt   time.Time          `json:"completed_at"`
	DocumentCount int                `json:"document_count"`
	Coverage      AssessmentCoverage `json:"coverage"`
}

// Assessment is the root aggregate for one engagement.
type Assessment struct {
	ID            uuid.UUID        `json:"assessment_id"`
	ClientID      string           `json:"client_id"`
	ProjectName   string           `json:"project_name"`
	SystemContext string           `json:"system_context,omitempty"`
	Profile       catalog.Profile  `json:"profile"`
	Status        AssessmentStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// DocumentCount tracks how many documents have contributed evidence.
	DocumentCount int `json:"document_count"`

	// Evidence is the merged judgement map; kept so reassessment can fold
	// new documents into prior evidence.
	Evidence EvidenceMap `json:"evidence,omitempty"`

	Coverage   *AssessmentCoverage `json:"coverage,omitempty"`
	RunHistory []RunRecord         `json:"run_history,omitempty"`

	// Version guards optimistic read-modify-write cycles in the stores.
	Version int `json:"version"`
}

// Clone deep-copies the assessment for safe hand-off across goroutines.
func (a Assessment) Clone() Assessment {
	out := a
	out.Evidence = a.Evidence.Clone()
	if a.Coverage != nil {
		cov := a.Coverage.Clone()
		out.Coverage = &cov
	}
	if a.RunHistory != nil {
		out.RunHistory = make([]RunRecord, len(a.RunHistory))
		for i, run := range a.RunHistory {
			out.RunHistory[i] = RunRecord{
				RunID:         run.RunID,
				CompletedAt:   run.CompletedAt,
				DocumentCount: run.DocumentCount,
				Coverage:      run.Coverage.Clone(),
			}
		}
	}
	return out
}
