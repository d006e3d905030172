package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"itsg33/internal/assessment/applicability"
	"itsg33/internal/assessment/handler"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/assessment/ports/mocks"
	"itsg33/internal/assessment/service"
	"itsg33/internal/assessment/store"
	"itsg33/internal/catalog"
	"itsg33/internal/platform/logger"
	"itsg33/pkg/testutil"
)

const adminToken = "test-admin-token"

const catalogYAML = `controls:
  - id: AC-1
    name: Access Control Policy
    family: AC
    profile: 1
  - id: AC-2
    name: Account Management
    family: AC
    profile: 1
  - id: AU-1
    name: Audit Policy
    family: AU
    profile: 1
`

func newRouter(t *testing.T, extractor ports.EvidenceExtractor) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	auditor := mocks.NewMockAuditPort(ctrl)
	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cat, err := catalog.Parse([]byte(catalogYAML))
	require.NoError(t, err)

	log := logger.New()
	svc := service.New(store.NewInMemoryStore(), cat,
		applicability.NewResolver(nil, log), extractor, auditor,
		service.WithLogger(log))

	r := chi.NewRouter()
	handler.New(svc, log, adminToken).Register(r)
	return r
}

func extractorReturning(t *testing.T, judgements []ports.ExtractedJudgement) ports.EvidenceExtractor {
	t.Helper()
	ctrl := gomock.NewController(t)
	extractor := mocks.NewMockEvidenceExtractor(ctrl)
	extractor.EXPECT().
		ExtractEvidence(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(judgements, nil).
		AnyTimes()
	return extractor
}

func createAssessment(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/assessments", map[string]any{
		"client_id":    "client-1",
		"project_name": "payroll modernization",
		"profile":      1,
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	id, _ := (*resp)["assessment_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func runDocuments(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/assessments/"+id+"/documents", map[string]any{
		"documents": []map[string]string{{"name": "policy.md", "content": "access is controlled"}},
	}))
	testutil.AssertStatusOK(t, rr)
}

func TestCreateAssessment(t *testing.T) {
	router := newRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/assessments", map[string]any{
		"client_id":    "client-1",
		"project_name": "payroll modernization",
		"profile":      2,
	}))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "status", "created")
	testutil.AssertJSONContains(t, rr, "client_id", "client-1")
}

func TestCreateAssessment_BadProfile(t *testing.T) {
	router := newRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/assessments", map[string]any{
		"client_id":    "client-1",
		"project_name": "p",
		"profile":      7,
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation")
}

func TestGetAssessment_InvalidID(t *testing.T) {
	router := newRouter(t, nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/not-a-uuid"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestGetAssessment_NotFound(t *testing.T) {
	router := newRouter(t, nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/6a09e1a4-68ef-4a2f-9d52-0c3ba0f2e001"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestRunAndCoverage(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1, Summary: "automated export"},
		{ControlID: "AC-2", CoverageLevel: "PARTIAL", StrengthTier: 5, Summary: "screenshot"},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/coverage"))
	testutil.AssertStatusOK(t, rr)

	cov := testutil.UnmarshalResponse[map[string]any](t, rr)
	summary := (*cov)["summary"].(map[string]any)
	assert.Equal(t, 50.0, summary["coverage_percentage"])
	assert.Equal(t, 3.0, summary["total_controls"])
}

func TestCoverage_BeforeRun(t *testing.T) {
	router := newRouter(t, nil)
	id := createAssessment(t, router)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/coverage"))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")
}

func TestOverride_RequiresAdminToken(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)

	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/assessments/"+id+"/controls/AU-1/not-applicable", map[string]string{"reason": "n/a"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestOverride_MarkNotApplicable(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1},
		{ControlID: "AC-2", CoverageLevel: "PARTIAL", StrengthTier: 5},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)

	req := testutil.WithAdminToken(testutil.NewJSONRequest(t, http.MethodPost,
		"/assessments/"+id+"/controls/AU-1/not-applicable",
		map[string]string{"reason": "no audit scope"}), adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "from_status", "no_coverage")
	testutil.AssertJSONContains(t, rr, "to_status", "not_applicable")
	testutil.AssertJSONContains(t, rr, "new_coverage_percentage", 75.0)
}

func TestOverride_MissingReason(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)

	req := testutil.WithAdminToken(testutil.NewJSONRequest(t, http.MethodPost,
		"/assessments/"+id+"/controls/AU-1/not-applicable",
		map[string]string{"reason": ""}), adminToken)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation")
}

func TestOverride_RejectAndRestore(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)

	req := testutil.WithAdminToken(testutil.NewJSONRequest(t, http.MethodPost,
		"/assessments/"+id+"/controls/AC-1/reject-evidence",
		map[string]string{"reason": "stale policy doc"}), adminToken)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "to_status", "rejected_evidence")

	req = testutil.WithAdminToken(testutil.NewJSONRequest(t, http.MethodPost,
		"/assessments/"+id+"/controls/AC-1/restore", nil), adminToken)
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "to_status", "full_coverage")
}

func TestHistoryAndQualityReport(t *testing.T) {
	router := newRouter(t, extractorReturning(t, []ports.ExtractedJudgement{
		{ControlID: "AC-1", CoverageLevel: "FULL", StrengthTier: 1},
	}))
	id := createAssessment(t, router)
	runDocuments(t, router, id)
	runDocuments(t, router, id)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/history"))
	testutil.AssertStatusOK(t, rr)
	hist := testutil.UnmarshalResponse[map[string][]map[string]any](t, rr)
	assert.Len(t, (*hist)["runs"], 2)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/history/2"))
	testutil.AssertStatusOK(t, rr)
	run := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(2), (*run)["run_id"])

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/history/9"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id+"/quality-report"))
	testutil.AssertStatusOK(t, rr)
	report := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.NotEmpty(t, (*report)["tier_distribution"])
}

func TestPurge(t *testing.T) {
	router := newRouter(t, nil)
	id := createAssessment(t, router)

	req := testutil.WithAdminToken(testutil.NewRequest(t, http.MethodDelete, "/assessments/"+id), adminToken)
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments/"+id))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestListAssessments(t *testing.T) {
	router := newRouter(t, nil)
	createAssessment(t, router)
	createAssessment(t, router)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/assessments"))
	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[map[string][]map[string]any](t, rr)
	assert.Len(t, (*resp)["assessments"], 2)
}

func TestReferenceEndpoints(t *testing.T) {
	router := newRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/controls/families"))
	testutil.AssertStatusOK(t, rr)
	fams := testutil.UnmarshalResponse[map[string][]map[string]string](t, rr)
	assert.Len(t, (*fams)["families"], 17)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/profiles"))
	testutil.AssertStatusOK(t, rr)
	profs := testutil.UnmarshalResponse[map[string][]map[string]any](t, rr)
	assert.Len(t, (*profs)["profiles"], 3)
}
