package applicability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"itsg33/internal/assessment/ports"
	"itsg33/internal/assessment/ports/mocks"
	"itsg33/internal/catalog"
)

var candidates = []catalog.Control{
	{ID: "AC-1", Name: "Access Control Policy", Family: catalog.FamilyAC, MinProfile: 1},
	{ID: "PE-1", Name: "Physical Access Authorizations", Family: catalog.FamilyPE, MinProfile: 1},
}

func TestResolve_SplitsApplicability(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().
		ClassifyNotApplicable(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]ports.ApplicabilityDecision{
			{ControlID: "PE-1", Reason: "fully cloud hosted, no physical premises"},
		}, nil)

	r := NewResolver(classifier, nil)
	res := r.Resolve(context.Background(), "SaaS on public cloud", candidates, time.Now())

	require.Len(t, res.Applicable, 1)
	assert.Equal(t, "AC-1", res.Applicable[0].ID)
	require.Len(t, res.NotApplicable, 1)
	assert.Equal(t, "PE-1", res.NotApplicable[0].ControlID)
	assert.True(t, res.NotApplicable[0].AutoDetermined)
	assert.Equal(t, "fully cloud hosted, no physical premises", res.NotApplicable[0].NotApplicableReason)
	assert.Empty(t, res.Notes)
}

func TestResolve_FailsOpenOnClassifierError(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().
		ClassifyNotApplicable(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("model timeout"))

	r := NewResolver(classifier, nil)
	res := r.Resolve(context.Background(), "some system", candidates, time.Now())

	assert.Len(t, res.Applicable, 2)
	assert.Empty(t, res.NotApplicable)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "all profile controls were assessed")
}

func TestResolve_IgnoresUnknownControls(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().
		ClassifyNotApplicable(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]ports.ApplicabilityDecision{
			{ControlID: "XX-9", Reason: "hallucinated"},
		}, nil)

	r := NewResolver(classifier, nil)
	res := r.Resolve(context.Background(), "some system", candidates, time.Now())

	assert.Len(t, res.Applicable, 2)
	assert.Empty(t, res.NotApplicable)
	require.Len(t, res.Notes, 1)
	assert.Contains(t, res.Notes[0], "XX-9")
}

func TestResolve_EmptyContextSkipsClassifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	// no EXPECT: classifier must not be called

	r := NewResolver(classifier, nil)
	res := r.Resolve(context.Background(), "   ", candidates, time.Now())

	assert.Len(t, res.Applicable, 2)
	assert.Empty(t, res.NotApplicable)
}

func TestResolve_NilClassifier(t *testing.T) {
	r := NewResolver(nil, nil)
	res := r.Resolve(context.Background(), "described system", candidates, time.Now())
	assert.Len(t, res.Applicable, 2)
}
