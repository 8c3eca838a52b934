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
	chimw "github.com/go-chi/chi/v5/middleware"

	programHandler "grantgate/internal/program/handler"
	programMetrics "grantgate/internal/program/metrics"
	"grantgate/internal/program/schema"
	programService "grantgate/internal/program/service"
	programStore "grantgate/internal/program/store"
	"grantgate/internal/platform/config"
	"grantgate/internal/platform/httpserver"
	"grantgate/internal/platform/logger"
	"grantgate/internal/platform/metrics"
	"grantgate/internal/platform/postgres"
	"grantgate/internal/platform/redis"
	rlMetrics "grantgate/internal/ratelimit/metrics"
	rlMiddleware "grantgate/internal/ratelimit/middleware"
	rlModels "grantgate/internal/ratelimit/models"
	"grantgate/internal/ratelimit/store/bucket"
	audit "grantgate/pkg/platform/audit"
	"grantgate/pkg/platform/audit/publisher"
	auditMemory "grantgate/pkg/platform/audit/store/memory"
	auditPostgres "grantgate/pkg/platform/audit/store/postgres"
	"grantgate/pkg/platform/circuit"
	"grantgate/pkg/platform/httputil"
	"grantgate/pkg/platform/middleware/metadata"
	"grantgate/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout    = 30 * time.Second
	auditBufferSize   = 1024
	bucketSweepPeriod = 5 * time.Minute
)

// healthChecker is implemented by optional backing services.
type healthChecker interface {
	Health(ctx context.Context) error
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := programMetrics.New()
	checks := map[string]healthChecker{}

	store, trail, closeStores, err := buildStores(ctx, cfg, log, m, checks)
	if err != nil {
		return err
	}
	defer closeStores()

	auditor := publisher.NewPublisher(trail,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	if cfg.ProgramsFile != "" {
		programs, err := programStore.LoadPrograms(cfg.ProgramsFile, time.Now().UTC())
		if err != nil {
			return err
		}
		created, err := programStore.Seed(ctx, store, programs)
		if err != nil {
			return err
		}
		log.Info("programs seeded", "file", cfg.ProgramsFile, "created", created, "total", len(programs))
	}

	svc := programService.New(store,
		programService.WithLogger(log),
		programService.WithMetrics(m),
		programService.WithBatchConcurrency(cfg.Batch.Concurrency),
		programService.WithMaxBatchSize(cfg.Batch.MaxSize),
		programService.WithAuditor(auditor),
		programService.WithAuditTrail(trail),
	)
	validator, err := schema.New()
	if err != nil {
		return err
	}

	limiter := newRateLimiter(ctx, cfg.RateLimit, log)

	router := newRouter(log, metrics.New(), checks)
	programHandler.New(svc, validator, log, programHandler.WithRouteLimiter(limiter)).Register(router)

	srv := httpserver.New(cfg.Addr, router, httpserver.WithLogger(log))
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting grantgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStores picks PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise, then wraps the program store in the Redis cache when REDIS_URL is
// set.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger, m *programMetrics.Metrics, checks map[string]healthChecker) (programStore.Store, audit.Store, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store programStore.Store = programStore.NewInMemory()
	var trail audit.Store = auditMemory.NewInMemoryStore()
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, closeAll, err
	}
	if db != nil {
		closers = append(closers, func() { _ = db.Close() })
		checks["postgres"] = db
		pg := programStore.NewPostgres(db.DB)
		if err := pg.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		auditStore := auditPostgres.New(db.DB)
		if err := auditStore.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		store, trail = pg, auditStore
		log.Info("using postgres program store")
	} else {
		log.Warn("DATABASE_URL not set, programs are kept in memory")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		closeAll()
		return nil, nil, func() {}, err
	}
	if client != nil {
		closers = append(closers, func() { _ = client.Close() })
		checks["redis"] = client
		breaker := circuit.New("program-cache", circuit.WithCooldown(10*time.Second))
		store = programStore.NewRedisCache(store, client.Client, cfg.ProgramCacheTTL, m, programStore.WithBreaker(breaker))
		log.Info("program cache enabled", "ttl", cfg.ProgramCacheTTL)
	}
	return store, trail, closeAll, nil
}

// newRateLimiter builds the per-client limiter and sweeps idle buckets until
// ctx is done.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig, log *slog.Logger) *rlMiddleware.Middleware {
	buckets := bucket.New()
	go func() {
		ticker := time.NewTicker(bucketSweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := buckets.Sweep(); removed > 0 {
					log.Debug("swept idle rate limit buckets", "removed", removed)
				}
			}
		}
	}()
	limit := func(n int) rlModels.Limit {
		return rlModels.Limit{RequestsPerWindow: n, Window: cfg.Window}
	}
	return rlMiddleware.New(buckets, log,
		rlMiddleware.WithDisabled(cfg.Disabled),
		rlMiddleware.WithMetrics(rlMetrics.New()),
		rlMiddleware.WithLimit(rlModels.ClassEvaluate, limit(cfg.Evaluate)),
		rlMiddleware.WithLimit(rlModels.ClassAuthoring, limit(cfg.Authoring)),
		rlMiddleware.WithLimit(rlModels.ClassRead, limit(cfg.Read)),
	)
}

func newRouter(log *slog.Logger, m *metrics.Metrics, checks map[string]healthChecker) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(metrics.Latency(m))
	r.Use(metadata.RequestMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for name, c := range checks {
			if err := c.Health(r.Context()); err != nil {
				log.WarnContext(r.Context(), "health check failed", "dependency", name, "error", err)
				status[name] = "unavailable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{"healthy": healthy, "dependencies": status})
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}
