// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Tubely HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the store (MongoDB indexes or PostgreSQL migrations).
//  4. Connect to Redis when configured.
//  5. Connect the media host.
//  6. Build the token service.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/tubely/internal/api"
	"github.com/taibuivan/tubely/internal/platform/config"
	"github.com/taibuivan/tubely/internal/platform/constants"
	"github.com/taibuivan/tubely/internal/platform/middleware"
	redisstore "github.com/taibuivan/tubely/internal/platform/redis"
	"github.com/taibuivan/tubely/internal/platform/sec"
	"github.com/taibuivan/tubely/internal/social/subscription"
	"github.com/taibuivan/tubely/internal/social/tweet"
	"github.com/taibuivan/tubely/internal/users/account"
	"github.com/taibuivan/tubely/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Tubely] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend),
		slog.String("media", cfg.MediaBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Store ──────────────────────────────────────────────────────────
	store, err := openStores(startupCtx, cfg, log)
	must(log, err, "open store")
	defer store.close()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	// Without Redis the auth limiter counts per instance.
	var (
		rdb     *redis.Client
		counter middleware.Counter = middleware.NewMemoryCounter()
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()
		counter = redisstore.NewWindowCounter(rdb)
	} else {
		log.Warn("redis_not_configured", slog.String("auth_limiter", "memory"))
	}

	// ── 5. Media Host ─────────────────────────────────────────────────────
	host, err := openMediaHost(startupCtx, cfg, log)
	must(log, err, "connect media host")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{
		CheckStore: store.check,
		CheckMedia: host.Ping,
	}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(store.users, tokens, host, log)
	authHandler := auth.NewHandler(authService, auth.HandlerConfig{
		CookieSecure:  cfg.CookieSecure,
		AccessTTL:     tokens.AccessTTL(),
		UploadTempDir: cfg.UploadTempDir,
		Throttle:      middleware.WindowLimit(counter, cfg.AuthRateLimit, cfg.AuthRateWindow, constants.RedisPrefixAuthLimit),
	})

	accountService := account.NewService(store.users, host, log)
	subscriptionService := subscription.NewService(store.subscriptions, store.users, log)
	tweetService := tweet.NewService(store.tweets, store.users, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		Account:      account.NewHandler(accountService, cfg.UploadTempDir),
		Subscription: subscription.NewHandler(subscriptionService),
		Tweet:        tweet.NewHandler(tweetService),
	}

	server := api.NewServer(serverCtx, cfg, log, authService, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		return
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "tubely"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
