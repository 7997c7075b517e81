// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-cancellation/internal/config"
	"subscription-cancellation/internal/infra/api"
	pg "subscription-cancellation/internal/infra/db/postgres"
	"subscription-cancellation/internal/infra/logging"
	"subscription-cancellation/internal/infra/metrics"
	red "subscription-cancellation/internal/infra/redis"
	"subscription-cancellation/internal/infra/sched"
	"subscription-cancellation/internal/infra/security"
	"subscription-cancellation/internal/infra/web"
	"subscription-cancellation/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, insecure cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Security stores (Redis when configured, in-memory otherwise) ----
	var (
		counterStore security.CounterStore
		tokenStore   security.TokenStore
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		counterStore = red.NewCounterStore(redisClient)
		tokenStore = red.NewTokenStore(redisClient)
		logger.Info().Msg("security stores backed by redis")
	} else {
		memCounters := security.NewMemoryCounterStore()
		memTokens := security.NewMemoryTokenStore()
		counterStore = memCounters
		tokenStore = memTokens
		go func() {
			_ = sched.NewSweepWorker("ratelimit", cfg.Security.RateLimitSweep, memCounters, logger).Run(ctx)
		}()
		go func() {
			_ = sched.NewSweepWorker("csrf", cfg.Security.CSRFSweep, memTokens, logger).Run(ctx)
		}()
		logger.Warn().Msg("redis.url not set; security stores are in-memory (single instance only)")
	}
	limiter := security.NewRateLimiter(counterStore)
	csrf := security.NewCSRFManager(tokenStore, cfg.Security.CSRFTokenTTL)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	cancelRepo := pg.NewCancellationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	cancelUC := usecase.NewCancellationUseCase(cancelRepo, subRepo, txManager, logger)

	// ---- Public cancellation API ----
	apiSrv := api.NewServer(cancelUC, csrf, limiter, cfg, logger)
	publicServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiSrv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("cancellation API listening")
		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("public server error")
		}
	}()

	// ---- Admin API + metrics ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	adminSrv := web.NewServer(cancelUC, userRepo, auth, cfg.Admin.APIKey, logger)
	adminMux := http.NewServeMux()
	adminSrv.RegisterRoutes(adminMux)
	adminServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminMux,
	}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin API listening")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Println("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = publicServer.Shutdown(shutdownCtx)
	_ = adminServer.Shutdown(shutdownCtx)
}
