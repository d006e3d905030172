package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"itsg33/internal/assessment/models"
)

func TestMerge_Additive(t *testing.T) {
	existing := models.EvidenceMap{
		"AC-1": {{ControlID: "AC-1", SourceDocument: "a.md", CoverageLevel: models.LevelPartial, StrengthTier: models.TierNarrative}},
	}
	batch := []models.EvidenceJudgement{
		{ControlID: "AC-1", SourceDocument: "b.md", CoverageLevel: models.LevelFull, StrengthTier: models.TierAutomatedTest},
		{ControlID: "AC-2", SourceDocument: "b.md", CoverageLevel: models.LevelMentions, StrengthTier: models.TierNarrative},
	}

	merged := Merge(existing, batch)

	assert.Len(t, merged["AC-1"], 2)
	assert.Len(t, merged["AC-2"], 1)
	// input map untouched
	assert.Len(t, existing["AC-1"], 1)
}

func TestMerge_DuplicatesAccumulate(t *testing.T) {
	j := models.EvidenceJudgement{ControlID: "AC-1", SourceDocument: "a.md", CoverageLevel: models.LevelFull, StrengthTier: models.TierSystemGenerated}

	merged := Merge(nil, []models.EvidenceJudgement{j})
	merged = Merge(merged, []models.EvidenceJudgement{j})

	assert.Len(t, merged["AC-1"], 2)
}

func TestMerge_SkipsEmptyControlID(t *testing.T) {
	merged := Merge(nil, []models.EvidenceJudgement{
		{ControlID: "", SourceDocument: "a.md", CoverageLevel: models.LevelFull, StrengthTier: models.TierNarrative},
	})
	assert.Empty(t, merged)
}
