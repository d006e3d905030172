package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"itsg33/internal/assessment/applicability"
	"itsg33/internal/assessment/metrics"
	"itsg33/internal/assessment/models"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/assessment/store"
	"itsg33/internal/catalog"
	"itsg33/internal/platform/middleware"
	"itsg33/pkg/audit"
	dErrors "itsg33/pkg/domain-errors"
	"itsg33/pkg/sentinel"
)

// updateRetries bounds the optimistic read-modify-write loop. Contention on
// a single assessment is human-scale, so a handful of retries is plenty.
const updateRetries = 3

// Service orchestrates assessment lifecycle, runs, and overrides. All state
// transitions funnel through it so the partition invariant and the audit
// trail stay consistent.
type Service struct {
	store     store.Store
	catalog   *catalog.Catalog
	resolver  *applicability.Resolver
	extractor ports.EvidenceExtractor
	auditor   ports.AuditPort
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// extractConcurrency caps parallel document extraction per run.
	extractConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithExtractConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.extractConcurrency = n
		}
	}
}

func New(st store.Store, cat *catalog.Catalog, resolver *applicability.Resolver, extractor ports.EvidenceExtractor, auditor ports.AuditPort, opts ...Option) *Service {
	s := &Service{
		store:              st,
		catalog:            cat,
		resolver:           resolver,
		extractor:          extractor,
		auditor:            auditor,
		logger:             slog.Default(),
		tracer:             otel.Tracer("itsg33/assessment"),
		now:                time.Now,
		extractConcurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the fields needed to open an assessment.
type CreateRequest struct {
	ClientID      string
	ProjectName   string
	SystemContext string
	Profile       catalog.Profile
}

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if strings.TrimSpace(r.ProjectName) == "" {
		return dErrors.New(dErrors.CodeValidation, "project_name is required")
	}
	if !r.Profile.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "profile must be 1, 2, or 3")
	}
	return nil
}

// Create opens a new assessment in the created state. No controls are
// resolved until the first run.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Create")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	a := &models.Assessment{
		ID:            uuid.New(),
		ClientID:      strings.TrimSpace(req.ClientID),
		ProjectName:   strings.TrimSpace(req.ProjectName),
		SystemContext: strings.TrimSpace(req.SystemContext),
		Profile:       req.Profile,
		Status:        models.AssessmentCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
		Evidence:      make(models.EvidenceMap),
	}
	span.SetAttributes(attribute.String("assessment.id", a.ID.String()))

	if err := s.store.Create(ctx, a); err != nil {
		return nil, s.translateStoreErr(err, "create assessment")
	}

	s.emitAudit(ctx, audit.Event{
		AssessmentID: a.ID,
		Action:       audit.ActionAssessmentCreated,
		ToStatus:     string(a.Status),
	})
	if s.metrics != nil {
		s.metrics.AssessmentsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "assessment created",
		"assessment_id", a.ID, "client_id", a.ClientID, "profile", int(a.Profile))
	return a, nil
}

// Get returns the assessment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Assessment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.translateStoreErr(err, "get assessment")
	}
	return a, nil
}

// List returns all assessments.
func (s *Service) List(ctx context.Context) ([]*models.Assessment, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, s.translateStoreErr(err, "list assessments")
	}
	return all, nil
}

// Purge deletes an assessment and everything derived from it.
func (s *Service) Purge(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "assessment.Purge")
	defer span.End()
	span.SetAttributes(attribute.String("assessment.id", id.String()))

	if err := s.store.Delete(ctx, id); err != nil {
		return s.translateStoreErr(err, "purge assessment")
	}
	s.emitAudit(ctx, audit.Event{
		AssessmentID: id,
		Action:       audit.ActionAssessmentPurged,
	})
	s.logger.InfoContext(ctx, "assessment purged", "assessment_id", id)
	return nil
}

// AuditTrail returns the audit events recorded for an assessment, oldest
// first. Only available when the audit publisher has a queryable store.
func (s *Service) AuditTrail(ctx context.Context, id uuid.UUID) ([]audit.Event, error) {
	lister, ok := s.auditor.(interface {
		List(ctx context.Context, assessmentID uuid.UUID) ([]audit.Event, error)
	})
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit trail not available")
	}
	events, err := lister.List(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events")
	}
	return events, nil
}

// update runs a read-modify-write cycle with bounded retries on version
// conflicts. mutate sees a private clone and may return a domain error to
// abort.
func (s *Service) update(ctx context.Context, id uuid.UUID, mutate func(a *models.Assessment) error) (*models.Assessment, error) {
	var lastErr error
	for attempt := 0; attempt <= updateRetries; attempt++ {
		a, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, s.translateStoreErr(err, "get assessment")
		}
		expected := a.Version
		if err := mutate(a); err != nil {
			return nil, err
		}
		a.UpdatedAt = s.now()
		err = s.store.Update(ctx, a, expected)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, sentinel.ErrVersionConflict) {
			return nil, s.translateStoreErr(err, "update assessment")
		}
		if s.metrics != nil {
			s.metrics.VersionConflicts.Inc()
		}
		lastErr = err
	}
	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict,
		"assessment was modified concurrently, retry the request")
}

func (s *Service) translateStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "assessment not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "assessment already exists")
	case errors.Is(err, sentinel.ErrVersionConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "assessment was modified concurrently")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"assessment_id", event.AssessmentID, "action", string(event.Action), "error", err)
	}
}
