package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"itsg33/internal/assessment/models"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/assessment/service"
	"itsg33/internal/catalog"
	"itsg33/internal/platform/middleware"
	"itsg33/pkg/audit"
	dErrors "itsg33/pkg/domain-errors"
	"itsg33/pkg/httputil"
)

// Service defines the assessment operations the handler depends on.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*models.Assessment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error)
	List(ctx context.Context) ([]*models.Assessment, error)
	Purge(ctx context.Context, id uuid.UUID) error
	Run(ctx context.Context, id uuid.UUID, docs []ports.Document) (*models.Assessment, error)
	MarkNotApplicable(ctx context.Context, id uuid.UUID, controlID, reason string) (*service.OverrideResult, error)
	RejectEvidence(ctx context.Context, id uuid.UUID, controlID, reason string) (*service.OverrideResult, error)
	Restore(ctx context.Context, id uuid.UUID, controlID string) (*service.OverrideResult, error)
	Quality(ctx context.Context, id uuid.UUID) (*service.QualityReport, error)
	History(ctx context.Context, id uuid.UUID) ([]models.RunRecord, error)
	AuditTrail(ctx context.Context, id uuid.UUID) ([]audit.Event, error)
}

// Handler wires assessment endpoints to the assessment service.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
}

// New constructs an assessment handler with its dependencies.
func New(service Service, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{service: service, logger: logger, adminToken: adminToken}
}

// Register mounts assessment endpoints on the router. Overrides and purge
// mutate human decisions, so they sit behind the admin token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)

		r.Route("/{assessmentID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Get("/status", h.HandleStatus)
			r.Get("/coverage", h.HandleCoverage)
			r.Get("/history", h.HandleHistory)
			r.Get("/history/{runID}", h.HandleHistoryRun)
			r.Get("/quality-report", h.HandleQualityReport)
			r.Get("/audit", h.HandleAuditTrail)
			r.Post("/run", h.HandleRun)
			r.Post("/documents", h.HandleRun)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
				r.Delete("/", h.HandlePurge)
				r.Post("/controls/{controlID}/not-applicable", h.HandleMarkNotApplicable)
				r.Post("/controls/{controlID}/reject-evidence", h.HandleRejectEvidence)
				r.Post("/controls/{controlID}/restore", h.HandleRestore)
			})
		})
	})

	r.Get("/controls/families", h.HandleFamilies)
	r.Get("/profiles", h.HandleProfiles)
}

// HandleCreate handles POST /assessments requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	a, err := h.service.Create(ctx, service.CreateRequest{
		ClientID:      req.ClientID,
		ProjectName:   req.ProjectName,
		SystemContext: req.SystemContext,
		Profile:       catalog.Profile(req.Profile),
	})
	if err != nil {
		h.logError(ctx, "create assessment failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toSummary(a))
}

// HandleList handles GET /assessments requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.service.List(ctx)
	if err != nil {
		h.logError(ctx, "list assessments failed", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]assessmentSummary, 0, len(all))
	for _, a := range all {
		out = append(out, toSummary(a))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"assessments": out})
}

// HandleGet handles GET /assessments/{assessmentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleStatus handles GET /assessments/{assessmentID}/status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummary(a))
}

// HandleCoverage handles GET /assessments/{assessmentID}/coverage requests.
func (h *Handler) HandleCoverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if a.Coverage == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidState,
			"assessment has no coverage yet, run it first"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a.Coverage)
}

// HandleRun handles POST /assessments/{assessmentID}/documents requests.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}

	var req runRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs := make([]ports.Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, ports.Document{Name: d.Name, Content: d.Content})
	}

	a, err := h.service.Run(ctx, id, docs)
	if err != nil {
		h.logError(ctx, "assessment run failed", err, "assessment_id", id)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assessment run handled",
		"request_id", middleware.GetRequestID(ctx),
		"assessment_id", id,
		"documents", len(docs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"assessment_id": a.ID,
		"status":        a.Status,
		"run_id":        len(a.RunHistory),
		"coverage":      a.Coverage,
	})
}

// HandleMarkNotApplicable handles POST .../controls/{controlID}/not-applicable.
func (h *Handler) HandleMarkNotApplicable(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, h.service.MarkNotApplicable)
}

// HandleRejectEvidence handles POST .../controls/{controlID}/reject-evidence.
func (h *Handler) HandleRejectEvidence(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, h.service.RejectEvidence)
}

// HandleRestore handles POST .../controls/{controlID}/restore. No reason
// required; restoring is the undo, not the decision.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	controlID := chi.URLParam(r, "controlID")

	res, err := h.service.Restore(ctx, id, controlID)
	if err != nil {
		h.logError(ctx, "restore failed", err, "assessment_id", id, "control_id", controlID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOverrideResponse(res, controlID))
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, controlID, reason string) (*service.OverrideResult, error)) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	controlID := chi.URLParam(r, "controlID")

	var req overrideRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := op(ctx, id, controlID, req.Reason)
	if err != nil {
		h.logError(ctx, "override failed", err, "assessment_id", id, "control_id", controlID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOverrideResponse(res, controlID))
}

func toOverrideResponse(res *service.OverrideResult, controlID string) overrideResponse {
	return overrideResponse{
		AssessmentID:          res.Assessment.ID,
		ControlID:             controlID,
		FromStatus:            res.From,
		ToStatus:              res.To,
		NewCoveragePercentage: res.Assessment.Coverage.Summary.CoveragePercentage,
		NewQualityScore:       res.Assessment.Coverage.Summary.QualityScore,
	}
}

// HandleHistory handles GET /assessments/{assessmentID}/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	runs, err := h.service.History(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]runHistoryEntry, 0, len(runs))
	for _, run := range runs {
		out = append(out, runHistoryEntry{
			RunID:         run.RunID,
			CompletedAt:   run.CompletedAt,
			DocumentCount: run.DocumentCount,
			Summary:       run.Coverage.Summary,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// HandleHistoryRun handles GET /assessments/{assessmentID}/history/{runID}.
func (h *Handler) HandleHistoryRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	runID, err := strconv.Atoi(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid run id"))
		return
	}
	runs, err := h.service.History(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, run := range runs {
		if run.RunID == runID {
			httputil.WriteJSON(w, http.StatusOK, run)
			return
		}
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "run not found"))
}

// HandleQualityReport handles GET /assessments/{assessmentID}/quality-report.
func (h *Handler) HandleQualityReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	report, err := h.service.Quality(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleAuditTrail handles GET /assessments/{assessmentID}/audit requests.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	events, err := h.service.AuditTrail(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// HandlePurge handles DELETE /assessments/{assessmentID} requests.
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.assessmentID(w, r)
	if !ok {
		return
	}
	if err := h.service.Purge(ctx, id); err != nil {
		h.logError(ctx, "purge failed", err, "assessment_id", id)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFamilies handles GET /families requests.
func (h *Handler) HandleFamilies(w http.ResponseWriter, r *http.Request) {
	out := make([]familyPayload, 0, len(catalog.Families()))
	for _, f := range catalog.Families() {
		out = append(out, familyPayload{ID: string(f), Name: catalog.FamilyNames[f]})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"families": out})
}

// HandleProfiles handles GET /profiles requests.
func (h *Handler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	out := []profilePayload{
		{Profile: 1, Description: catalog.ProfileDescriptions[catalog.Profile1]},
		{Profile: 2, Description: catalog.ProfileDescriptions[catalog.Profile2]},
		{Profile: 3, Description: catalog.ProfileDescriptions[catalog.Profile3]},
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"profiles": out})
}

func (h *Handler) assessmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid assessment id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "request_id", middleware.GetRequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
