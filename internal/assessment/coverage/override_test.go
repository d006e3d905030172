package coverage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itsg33/internal/assessment/models"
	dErrors "itsg33/pkg/domain-errors"
)

func TestMarkNotApplicable_RaisesCoveragePercentage(t *testing.T) {
	cov := threeControlCoverage(t)
	now := time.Now()

	tr, err := MarkNotApplicable(cov, "AU-1", "no wireless capability", now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusNoCoverage, tr.From)
	assert.Equal(t, models.StatusNotApplicable, tr.To)
	// effective total drops to 2: (1 + 0.5) / 2
	assert.Equal(t, 75.0, tr.Coverage.Summary.CoveragePercentage)

	entry, status, found := tr.Coverage.Find("AU-1")
	require.True(t, found)
	assert.Equal(t, models.StatusNotApplicable, status)
	assert.Equal(t, "no wireless capability", entry.NotApplicableReason)
	assert.False(t, entry.AutoDetermined)
	assert.Equal(t, models.StatusNoCoverage, entry.OriginStatus)
	require.NotNil(t, entry.MarkedAt)
	assert.Equal(t, now, *entry.MarkedAt)
}

func TestMarkNotApplicable_EmptyReason(t *testing.T) {
	cov := threeControlCoverage(t)

	_, err := MarkNotApplicable(cov, "AU-1", "  ", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestMarkNotApplicable_UnknownControl(t *testing.T) {
	cov := threeControlCoverage(t)

	_, err := MarkNotApplicable(cov, "ZZ-99", "because", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMarkNotApplicable_AlreadyNotApplicable(t *testing.T) {
	cov := threeControlCoverage(t)
	tr, err := MarkNotApplicable(cov, "AU-1", "first", time.Now())
	require.NoError(t, err)

	_, err = MarkNotApplicable(tr.Coverage, "AU-1", "again", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMarkNotApplicable_ClearsRejectionMetadata(t *testing.T) {
	cov := threeControlCoverage(t)
	now := time.Now()

	rejected, err := RejectEvidence(cov, "AC-1", "stale policy doc", now)
	require.NoError(t, err)

	tr, err := MarkNotApplicable(rejected.Coverage, "AC-1", "out of scope after review", now)
	require.NoError(t, err)

	entry, _, found := tr.Coverage.Find("AC-1")
	require.True(t, found)
	assert.Empty(t, entry.RejectionReason)
	assert.Empty(t, string(entry.RejectedFrom))
	assert.Nil(t, entry.RejectedAt)
	assert.Equal(t, models.StatusRejectedEvidence, entry.OriginStatus)
}

func TestRejectEvidence_CountsInEffectiveTotal(t *testing.T) {
	cov := threeControlCoverage(t)
	now := time.Now()

	tr, err := RejectEvidence(cov, "AC-1", "stale policy doc", now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFullCoverage, tr.From)
	assert.Equal(t, models.StatusRejectedEvidence, tr.To)

	entry, _, found := tr.Coverage.Find("AC-1")
	require.True(t, found)
	assert.Equal(t, "stale policy doc", entry.RejectionReason)
	assert.Equal(t, models.StatusFullCoverage, entry.RejectedFrom)
	require.NotNil(t, entry.RejectedAt)

	// rejected control stays in the denominator: (0 + 0.5) / 3
	assert.Equal(t, 16.7, tr.Coverage.Summary.CoveragePercentage)
}

func TestRejectEvidence_RequiresEvidence(t *testing.T) {
	cov := threeControlCoverage(t)

	// AU-1 has no evidence, nothing to reject
	_, err := RejectEvidence(cov, "AU-1", "nope", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRejectEvidence_EmptyReason(t *testing.T) {
	cov := threeControlCoverage(t)

	_, err := RejectEvidence(cov, "AC-1", "", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRestore_ManualNotApplicableRoundTrip(t *testing.T) {
	cov := threeControlCoverage(t)
	original := cov.Summary

	marked, err := MarkNotApplicable(cov, "AU-1", "no wireless capability", time.Now())
	require.NoError(t, err)

	restored, err := Restore(marked.Coverage, "AU-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusNotApplicable, restored.From)
	assert.Equal(t, models.StatusNoCoverage, restored.To)
	assert.Equal(t, original, restored.Coverage.Summary)

	entry, _, found := restored.Coverage.Find("AU-1")
	require.True(t, found)
	assert.Empty(t, entry.NotApplicableReason)
	assert.Empty(t, string(entry.OriginStatus))
	assert.Nil(t, entry.MarkedAt)
}

func TestRestore_AutoNotApplicableGoesToNoCoverage(t *testing.T) {
	now := time.Now()
	na := []models.ControlCoverageEntry{{
		ControlID:           "AU-1",
		ControlName:         "Audit Policy",
		NotApplicableReason: "isolated system",
		AutoDetermined:      true,
		MarkedAt:            &now,
	}}
	cov := Compute(testControls[:2], na, nil)

	restored, err := Restore(cov, "AU-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoCoverage, restored.To)
}

func TestRestore_RejectRoundTripKeepsEvidence(t *testing.T) {
	cov := threeControlCoverage(t)
	before, _, found := cov.Find("AC-1")
	require.True(t, found)

	rejected, err := RejectEvidence(cov, "AC-1", "stale policy doc", time.Now())
	require.NoError(t, err)

	restored, err := Restore(rejected.Coverage, "AC-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullCoverage, restored.To)

	after, status, found := restored.Coverage.Find("AC-1")
	require.True(t, found)
	assert.Equal(t, models.StatusFullCoverage, status)
	assert.Equal(t, before.Evidence, after.Evidence)
	assert.Equal(t, before.BestEffectiveScore, after.BestEffectiveScore)
	assert.Empty(t, after.RejectionReason)
}

func TestRestore_NotOverridden(t *testing.T) {
	cov := threeControlCoverage(t)

	_, err := Restore(cov, "AC-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestOverrides_DoNotMutateInput(t *testing.T) {
	cov := threeControlCoverage(t)
	before := cov.Summary

	_, err := MarkNotApplicable(cov, "AU-1", "reason", time.Now())
	require.NoError(t, err)
	_, err = RejectEvidence(cov, "AC-1", "reason", time.Now())
	require.NoError(t, err)

	require.NoError(t, cov.CheckPartition())
	assert.Equal(t, before, cov.Summary)
	assert.Len(t, cov.NotApplicable, 0)
	assert.Len(t, cov.RejectedEvidence, 0)
}

func TestApply_UnknownAction(t *testing.T) {
	cov := threeControlCoverage(t)

	_, err := Apply(cov, "AC-1", "promote", "reason", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
