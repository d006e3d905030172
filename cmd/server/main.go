package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"itsg33/internal/assessment/applicability"
	"itsg33/internal/assessment/handler"
	assessmentmetrics "itsg33/internal/assessment/metrics"
	"itsg33/internal/assessment/ports"
	"itsg33/internal/assessment/service"
	"itsg33/internal/assessment/store"
	"itsg33/internal/catalog"
	"itsg33/internal/llm"
	"itsg33/internal/platform/config"
	"itsg33/internal/platform/httpserver"
	"itsg33/internal/platform/logger"
	platformmetrics "itsg33/internal/platform/metrics"
	"itsg33/internal/platform/middleware"
	platformredis "itsg33/internal/platform/redis"
	"itsg33/pkg/audit"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Error("failed to load control catalog", "error", err)
		os.Exit(1)
	}
	log.Info("control catalog loaded", "controls", cat.Len())

	// Store selection: Postgres when configured, then Redis, then memory.
	var assessmentStore store.Store = store.NewInMemoryStore()
	var pool *pgxpool.Pool
	if cfg.PostgresURL != "" {
		pool, err = pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		assessmentStore = pg
		log.Info("using postgres assessment store")
	} else if cfg.Redis.URL != "" {
		rdb, err := platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		assessmentStore = store.NewRedisStore(rdb.Client)
		log.Info("using redis assessment store")
	} else {
		log.Warn("no store configured, assessments are held in memory")
	}

	auditor := buildAuditPublisher(ctx, cfg, pool, log)
	defer auditor.Close()

	var classifier ports.Classifier
	var extractor ports.EvidenceExtractor
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewClient(cfg.OpenAI, llm.WithLogger(log))
		if err != nil {
			log.Error("failed to build llm client", "error", err)
			os.Exit(1)
		}
		classifier = client
		extractor = client
	} else {
		log.Warn("OPENAI_API_KEY not set, document runs will be rejected")
	}

	resolver := applicability.NewResolver(classifier, log)
	metrics := assessmentmetrics.New()
	svc := service.New(assessmentStore, cat, resolver, extractor, auditor,
		service.WithLogger(log),
		service.WithMetrics(metrics),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(platformmetrics.New()))
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		handler.New(svc, log, cfg.AdminToken).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting itsg33 coverage engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildAuditPublisher composes the audit pipeline: an in-memory store for
// trail queries, Postgres persistence when available, and a Kafka sink when
// brokers are configured.
func buildAuditPublisher(ctx context.Context, cfg config.Server, pool *pgxpool.Pool, log *slog.Logger) *audit.Publisher {
	stores := []audit.Store{audit.NewInMemoryStore()}
	if pool != nil {
		stores = append(stores, audit.NewPostgresStore(pool))
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Warn("kafka audit sink unavailable, continuing without it", "error", err)
		} else {
			stores = append(stores, sink)
		}
	}

	var target audit.Store = stores[0]
	if len(stores) > 1 {
		target = audit.NewFanOutStore(stores...)
	}
	return audit.NewPublisher(target, audit.WithLogger(log), audit.WithAsyncBuffer(256))
}
