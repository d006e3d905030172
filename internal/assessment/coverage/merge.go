// Package coverage implements the control coverage state engine: evidence
// merging, classification and scoring, manual override transitions, and
// incremental reassessment. Everything here is a pure function over
// AssessmentCoverage values; callers own persistence and serialization.
package coverage

import (
	"itsg33/internal/assessment/models"
)

// Merge folds a batch of judgements from one document into the evidence map,
// returning a new map. There is no deduplication: the same evidence appearing
// across re-runs is intentionally additive, since repetition strengthens
// confidence. Neither input is mutated.
func Merge(existing models.EvidenceMap, batch []models.EvidenceJudgement) models.EvidenceMap {
	merged := existing.Clone()
	if merged == nil {
		merged = make(models.EvidenceMap)
	}
	for _, judgement := range batch {
		if judgement.ControlID == "" {
			continue
		}
		merged[judgement.ControlID] = append(merged[judgement.ControlID], judgement)
	}
	return merged
}
