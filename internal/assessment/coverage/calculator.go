package coverage

import (
	"fmt"
	"math"

	"itsg33/internal/assessment/models"
	"itsg33/internal/catalog"
)

// Compute derives a fresh AssessmentCoverage for the applicable controls
// from the merged evidence map. Entries already determined not applicable are
// carried through unchanged. The result satisfies the partition invariant by
// construction: each applicable control lands in exactly one list.
func Compute(applicable []catalog.Control, notApplicable []models.ControlCoverageEntry, evidence models.EvidenceMap) models.AssessmentCoverage {
	var cov models.AssessmentCoverage

	for _, entry := range notApplicable {
		cov.Append(entry.Clone(), models.StatusNotApplicable)
	}

	for _, ctrl := range applicable {
		entry := classify(ctrl, evidence[ctrl.ID])
		cov.Append(entry, entry.Status)
	}

	Recompute(&cov)
	return cov
}

// classify scores one control's evidence and picks its status.
func classify(ctrl catalog.Control, judgements []models.EvidenceJudgement) models.ControlCoverageEntry {
	entry := models.ControlCoverageEntry{
		ControlID:   ctrl.ID,
		ControlName: ctrl.Name,
		Family:      ctrl.Family,
	}

	if len(judgements) == 0 {
		entry.Status = models.StatusNoCoverage
		return entry
	}

	entry.Evidence = append([]models.EvidenceJudgement(nil), judgements...)

	hasFull := false
	for _, j := range judgements {
		score := j.EffectiveScore()
		if score > entry.BestEffectiveScore {
			entry.BestEffectiveScore = score
			entry.BestStrengthTier = j.StrengthTier.Clamp()
		}
		if j.CoverageLevel == models.LevelFull {
			hasFull = true
		}
	}

	if hasFull {
		entry.Status = models.StatusFullCoverage
	} else {
		entry.Status = models.StatusPartialCoverage
	}
	return entry
}

// Recompute re-derives the summary and recommendations from the five lists.
// It is always a full re-derivation, never an incremental patch, so the
// aggregates can never drift from the lists they describe.
func Recompute(cov *models.AssessmentCoverage) {
	fullCount := len(cov.FullCoverage)
	partialCount := len(cov.PartialCoverage)
	missingCount := len(cov.NoCoverage)
	naCount := len(cov.NotApplicable)
	rejectedCount := len(cov.RejectedEvidence)
	total := fullCount + partialCount + missingCount + naCount + rejectedCount

	// Not-applicable controls leave the denominator; rejected controls stay
	// in it and contribute zero.
	effectiveTotal := total - naCount

	var coveragePct float64
	if effectiveTotal > 0 {
		coveragePct = (float64(fullCount) + 0.5*float64(partialCount)) / float64(effectiveTotal) * 100
	}

	var qualitySum float64
	machineVerifiable := 0
	humanCurated := 0
	for _, list := range [][]models.ControlCoverageEntry{cov.FullCoverage, cov.PartialCoverage} {
		for _, entry := range list {
			qualitySum += entry.BestEffectiveScore
			if entry.BestStrengthTier.MachineVerifiable() {
				machineVerifiable++
			} else {
				humanCurated++
			}
		}
	}

	var qualityScore float64
	if effectiveTotal > 0 {
		qualityScore = qualitySum / (float64(effectiveTotal) * 100) * 100
	}

	cov.Summary = models.Summary{
		TotalControls:          total,
		FullCoverageCount:      fullCount,
		PartialCoverageCount:   partialCount,
		NoCoverageCount:        missingCount,
		NotApplicableCount:     naCount,
		RejectedEvidenceCount:  rejectedCount,
		CoveragePercentage:     round1(coveragePct),
		QualityScore:           round1(qualityScore),
		MachineVerifiableCount: machineVerifiable,
		HumanCuratedCount:      humanCurated,
	}

	cov.Recommendations = recommend(cov)
}

// recommend regenerates remediation guidance from the current classification.
func recommend(cov *models.AssessmentCoverage) []string {
	var recs []string
	for _, entry := range cov.NoCoverage {
		recs = append(recs, fmt.Sprintf(
			"No evidence found for %s (%s); provide policy, configuration, or system-generated evidence.",
			entry.ControlID, entry.ControlName))
	}
	for _, list := range [][]models.ControlCoverageEntry{cov.FullCoverage, cov.PartialCoverage} {
		for _, entry := range list {
			if !entry.BestStrengthTier.MachineVerifiable() {
				recs = append(recs, fmt.Sprintf(
					"Strongest evidence for %s is %s; supply machine-verifiable evidence (tier 4 or better).",
					entry.ControlID, entry.BestStrengthTier.Label()))
			}
		}
	}
	for _, entry := range cov.RejectedEvidence {
		recs = append(recs, fmt.Sprintf(
			"Evidence for %s was rejected (%s); resubmit stronger documentation.",
			entry.ControlID, entry.RejectionReason))
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
