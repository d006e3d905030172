package models

// CoverageStatus classifies a control's current coverage state. Every
// applicable control sits in exactly one status list at all times.
type CoverageStatus string

const (
	StatusFullCoverage     CoverageStatus = "full_coverage"
	StatusPartialCoverage  CoverageStatus = "partial_coverage"
	StatusNoCoverage       CoverageStatus = "no_coverage"
	StatusNotApplicable    CoverageStatus = "not_applicable"
	StatusRejectedEvidence CoverageStatus = "rejected_evidence"
)

// IsValid checks if the status is one of the supported enum values.
func (s CoverageStatus) IsValid() bool {
	switch s {
	case StatusFullCoverage, StatusPartialCoverage, StatusNoCoverage,
		StatusNotApplicable, StatusRejectedEvidence:
		return true
	}
	return false
}

// String returns the string representation.
func (s CoverageStatus) String() string {
	return string(s)
}

// CoverageLevel grades how completely one piece of evidence addresses a
// control, independent of how strong the evidence is.
type CoverageLevel string

const (
	LevelFull     CoverageLevel = "FULL"
	LevelPartial  CoverageLevel = "PARTIAL"
	LevelMentions CoverageLevel = "MENTIONS"
)

// IsValid checks if the coverage level is one of the supported enum values.
func (l CoverageLevel) IsValid() bool {
	switch l {
	case LevelFull, LevelPartial, LevelMentions:
		return true
	}
	return false
}

// Multiplier returns the scoring weight for this coverage level.
func (l CoverageLevel) Multiplier() float64 {
	switch l {
	case LevelFull:
		return 1.0
	case LevelPartial:
		return 0.5
	case LevelMentions:
		return 0.25
	}
	return 0
}

// StrengthTier ranks how verifiable a piece of evidence is. Tier 1 is
// machine-generated and strongest; tier 7 is narrative and weakest.
type StrengthTier int

const (
	TierSystemGenerated      StrengthTier = 1
	TierInfrastructureAsCode StrengthTier = 2
	TierAutomatedTest        StrengthTier = 3
	TierCodeEnforcement      StrengthTier = 4
	TierScreenshot           StrengthTier = 5
	TierVideoWalkthrough     StrengthTier = 6
	TierNarrative            StrengthTier = 7
)

// machineVerifiableThreshold separates evidence a pipeline can re-check from
// evidence a human has to vouch for.
const machineVerifiableThreshold = TierCodeEnforcement

var tierScores = map[StrengthTier]float64{
	TierSystemGenerated:      100,
	TierInfrastructureAsCode: 90,
	TierAutomatedTest:        80,
	TierCodeEnforcement:      70,
	TierScreenshot:           50,
	TierVideoWalkthrough:     30,
	TierNarrative:            20,
}

var tierLabels = map[StrengthTier]string{
	TierSystemGenerated:      "System-Generated",
	TierInfrastructureAsCode: "Infrastructure-as-Code",
	TierAutomatedTest:        "Automated Test",
	TierCodeEnforcement:      "Code Enforcement",
	TierScreenshot:           "Screenshot",
	TierVideoWalkthrough:     "Video Walkthrough",
	TierNarrative:            "Narrative",
}

// IsValid checks if the tier is in the 1-7 range.
func (t StrengthTier) IsValid() bool {
	return t >= TierSystemGenerated && t <= TierNarrative
}

// Clamp forces the tier into the valid range, defaulting out-of-range values
// to the weakest tier.
func (t StrengthTier) Clamp() StrengthTier {
	if t < TierSystemGenerated || t > TierNarrative {
		return TierNarrative
	}
	return t
}

// Score returns the strength score for this tier.
func (t StrengthTier) Score() float64 {
	return tierScores[t.Clamp()]
}

// Label returns the human-readable tier name.
func (t StrengthTier) Label() string {
	return tierLabels[t.Clamp()]
}

// MachineVerifiable reports whether evidence at this tier can be re-verified
// without a human in the loop.
func (t StrengthTier) MachineVerifiable() bool {
	return t.Clamp() <= machineVerifiableThreshold
}

// AssessmentStatus tracks the lifecycle of an assessment record.
type AssessmentStatus string

const (
	AssessmentCreated   AssessmentStatus = "created"
	AssessmentRunning   AssessmentStatus = "running"
	AssessmentCompleted AssessmentStatus = "completed"
	AssessmentFailed    AssessmentStatus = "failed"
)

// IsValid checks if the status is one of the supported enum values.
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentCreated, AssessmentRunning, AssessmentCompleted, AssessmentFailed:
		return true
	}
	return false
}
