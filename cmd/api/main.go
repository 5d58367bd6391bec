// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the AgentDesk HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when sessions live there.
//  5. Run database migrations (idempotent).
//  6. Wire stores, services, the authorization guard, and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/agentdesk/internal/api"
	"github.com/taibuivan/agentdesk/internal/org"
	"github.com/taibuivan/agentdesk/internal/platform/config"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	"github.com/taibuivan/agentdesk/internal/platform/metrics"
	"github.com/taibuivan/agentdesk/internal/platform/middleware"
	"github.com/taibuivan/agentdesk/internal/platform/migration"
	pgstore "github.com/taibuivan/agentdesk/internal/platform/postgres"
	redisstore "github.com/taibuivan/agentdesk/internal/platform/redis"
	"github.com/taibuivan/agentdesk/internal/users/auth"
	"github.com/taibuivan/agentdesk/internal/web"
	"github.com/taibuivan/agentdesk/internal/workspace/activitylog"
	"github.com/taibuivan/agentdesk/internal/workspace/assistant"
	"github.com/taibuivan/agentdesk/internal/workspace/knowledge"
	"github.com/taibuivan/agentdesk/internal/workspace/tool"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String(constants.FieldApp, "agentdesk"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String(constants.FieldApp, "agentdesk"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_store", cfg.SessionStore),
	)

	// Root context for startup. A 30s deadline surfaces misconfiguration
	// instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background work (rate limiter cleanup, session sweeper) stops with this.
	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.Database(), log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.SessionStore == config.SessionStoreRedis {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.Database(), cfg.MigrationPath, log), "run migrations")

	// ── 6. Observability ──────────────────────────────────────────────────
	instruments := metrics.New()
	instruments.RegisterPool(pool)

	healthDeps := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}
	if rdb != nil {
		healthDeps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 7. Identity ───────────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	var sessionRepository auth.SessionRepository
	if rdb != nil {
		sessionRepository = auth.NewRedisSessionRepository(rdb)
	} else {
		postgresSessions := auth.NewSessionRepository(pool)
		sessionRepository = postgresSessions
		go auth.RunSweeper(runCtx, postgresSessions, constants.SessionSweepInterval, log)
	}

	authService := auth.NewService(userRepository, sessionRepository, auth.SessionPolicy{
		TTL:       cfg.SessionTTL,
		UpdateAge: cfg.SessionUpdateAge,
	})
	resolver := auth.NewResolver(userRepository, sessionRepository, cfg.SessionCookieName)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	activityService := activitylog.NewService(activitylog.NewRepository(pool), log)
	orgService := org.NewService(org.NewRepository(pool), activityService, log)

	guard := middleware.NewGuard(resolver, orgService,
		middleware.WithObserver(instruments),
		middleware.WithGuardLogger(log),
	)

	handlers := api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		Metrics:       instruments.Handler(),
		Instrument:    instruments.Middleware,
		Guard:         guard,
		Auth:          auth.NewHandler(authService, auth.CookieSettings{Name: cfg.SessionCookieName, Secure: cfg.IsProduction()}),
		Organizations: org.NewHandler(orgService, guard),
		Assistants:    assistant.NewHandler(assistant.NewService(assistant.NewRepository(pool), activityService, log), guard),
		Knowledge:     knowledge.NewHandler(knowledge.NewService(knowledge.NewRepository(pool), activityService, log), guard),
		Tools:         tool.NewHandler(tool.NewService(tool.NewRepository(pool), activityService, log), guard),
		Logs:          activitylog.NewHandler(activityService),
		Pages:         web.NewSPA(os.DirFS(cfg.WebRoot)),
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(runCtx, cfg, log, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
	stopBackground()

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
