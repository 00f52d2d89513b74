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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"voicedesk-platform/internal/actions"
	"voicedesk-platform/internal/audit"
	"voicedesk-platform/internal/auth"
	"voicedesk-platform/internal/automation"
	"voicedesk-platform/internal/callrecords"
	"voicedesk-platform/internal/config"
	"voicedesk-platform/internal/httpapi"
	"voicedesk-platform/internal/leads"
	"voicedesk-platform/internal/pipeline"
	"voicedesk-platform/internal/tenants"
	"voicedesk-platform/internal/vapi"
	"voicedesk-platform/pkg/logger"
	"voicedesk-platform/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is a local-development convenience; absent in deployed environments.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Tenant resolution: postgres lookups behind a redis read-through cache.
	strategy, err := tenants.ParseStrategy(cfg.Vapi.TenantFallback)
	if err != nil {
		log.Error("tenant fallback config invalid", "err", err)
		os.Exit(1)
	}
	tenantRepo := tenants.NewCachedRepo(tenants.NewPostgresRepo(db), rdb, 5*time.Minute, log)
	resolver, err := tenants.NewResolver(tenantRepo, strategy)
	if err != nil {
		log.Error("tenant resolver init failed", "err", err)
		os.Exit(1)
	}

	callSvc := callrecords.NewService(callrecords.NewPostgresRepo(db))
	leadSvc := leads.NewService(leads.NewPostgresRepo(db))
	evaluator := automation.NewEvaluator(automation.NewPostgresRepo(db))
	trail := audit.NewRecorder(audit.NewPostgresRepo(db), log)
	dispatcher := actions.NewDispatcher(actions.NewPostgresWebhookConfigRepo(db), log, cfg.Vapi.WebhookTimeout)
	executor := actions.NewExecutor(
		actions.NewPostgresTagRepo(db),
		actions.NewPostgresAssignmentRepo(db),
		leadSvc,
		dispatcher,
		trail,
		log,
	)

	processor := pipeline.NewProcessor(resolver, callSvc, leadSvc, evaluator, executor, rdb, log)
	webhookHandler := vapi.NewWebhookHandler(processor, cfg.Vapi.WebhookSecret)

	apiHandlers := httpapi.NewHandlers(
		callSvc,
		leadSvc,
		automation.NewPostgresRepo(db),
		reportingService(db),
		trail,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, webhookHandler, apiHandlers, authManager)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	// Let in-flight outbound webhook deliveries drain before the process exits.
	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("outbound webhook drain timed out")
	}
}
