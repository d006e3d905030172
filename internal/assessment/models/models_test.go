package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrengthTier_Scores(t *testing.T) {
	cases := []struct {
		tier  StrengthTier
		score float64
	}{
		{TierSystemGenerated, 100},
		{TierInfrastructureAsCode, 90},
		{TierAutomatedTest, 80},
		{TierCodeEnforcement, 70},
		{TierScreenshot, 50},
		{TierVideoWalkthrough, 30},
		{TierNarrative, 20},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.score, tc.tier.Score(), "tier %d", tc.tier)
	}
}

func TestStrengthTier_Clamp(t *testing.T) {
	assert.Equal(t, TierNarrative, StrengthTier(0).Clamp())
	assert.Equal(t, TierNarrative, StrengthTier(8).Clamp())
	assert.Equal(t, TierNarrative, StrengthTier(-1).Clamp())
	assert.Equal(t, TierScreenshot, TierScreenshot.Clamp())
}

func TestStrengthTier_MachineVerifiable(t *testing.T) {
	assert.True(t, TierSystemGenerated.MachineVerifiable())
	assert.True(t, TierCodeEnforcement.MachineVerifiable())
	assert.False(t, TierScreenshot.MachineVerifiable())
	assert.False(t, TierNarrative.MachineVerifiable())
}

func TestCoverageLevel_Multiplier(t *testing.T) {
	assert.Equal(t, 1.0, LevelFull.Multiplier())
	assert.Equal(t, 0.5, LevelPartial.Multiplier())
	assert.Equal(t, 0.25, LevelMentions.Multiplier())
}

func TestEvidenceJudgement_EffectiveScore(t *testing.T) {
	j := EvidenceJudgement{CoverageLevel: LevelPartial, StrengthTier: TierSystemGenerated}
	assert.Equal(t, 50.0, j.EffectiveScore())

	j = EvidenceJudgement{CoverageLevel: LevelMentions, StrengthTier: TierNarrative}
	assert.Equal(t, 5.0, j.EffectiveScore())
}

func TestEvidenceMap_CloneIsDeep(t *testing.T) {
	m := EvidenceMap{"AC-1": {{ControlID: "AC-1", CoverageLevel: LevelFull}}}
	c := m.Clone()
	c["AC-1"] = append(c["AC-1"], EvidenceJudgement{ControlID: "AC-1"})

	assert.Len(t, m["AC-1"], 1)
	assert.Len(t, c["AC-1"], 2)
}

func TestCheckPartition(t *testing.T) {
	var cov AssessmentCoverage
	cov.Append(ControlCoverageEntry{ControlID: "AC-1"}, StatusFullCoverage)
	cov.Append(ControlCoverageEntry{ControlID: "AC-2"}, StatusNoCoverage)
	require.NoError(t, cov.CheckPartition())

	cov.Append(ControlCoverageEntry{ControlID: "AC-1"}, StatusRejectedEvidence)
	err := cov.CheckPartition()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AC-1")
}

func TestFind_SearchesRequestedLists(t *testing.T) {
	var cov AssessmentCoverage
	cov.Append(ControlCoverageEntry{ControlID: "AC-1"}, StatusPartialCoverage)

	_, status, found := cov.Find("AC-1")
	require.True(t, found)
	assert.Equal(t, StatusPartialCoverage, status)

	_, _, found = cov.Find("AC-1", StatusFullCoverage)
	assert.False(t, found)
}

func TestAppend_SetsStatus(t *testing.T) {
	var cov AssessmentCoverage
	cov.Append(ControlCoverageEntry{ControlID: "AC-1", Status: StatusFullCoverage}, StatusNotApplicable)

	entry, _, found := cov.Find("AC-1")
	require.True(t, found)
	assert.Equal(t, StatusNotApplicable, entry.Status)
}

func TestAssessment_CloneIsDeep(t *testing.T) {
	now := time.Now()
	cov := AssessmentCoverage{}
	cov.Append(ControlCoverageEntry{ControlID: "AC-1", MarkedAt: &now}, StatusNotApplicable)

	a := Assessment{
		Evidence: EvidenceMap{"AC-1": {{ControlID: "AC-1"}}},
		Coverage: &cov,
		RunHistory: []RunRecord{
			{RunID: 1, Coverage: cov.Clone()},
		},
	}

	c := a.Clone()
	c.Evidence["AC-2"] = []EvidenceJudgement{{ControlID: "AC-2"}}
	c.Coverage.Append(ControlCoverageEntry{ControlID: "AC-9"}, StatusNoCoverage)
	c.RunHistory[0].RunID = 99

	assert.NotContains(t, a.Evidence, "AC-2")
	assert.Empty(t, a.Coverage.NoCoverage)
	assert.Equal(t, 1, a.RunHistory[0].RunID)
}
