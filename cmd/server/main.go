package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/gudson/kpi/application/state"
	"github.com/gudson/kpi/application/usecase/audit"
	"github.com/gudson/kpi/application/usecase/auth"
	"github.com/gudson/kpi/application/usecase/authorization"
	"github.com/gudson/kpi/application/usecase/export"
	"github.com/gudson/kpi/application/usecase/records"
	"github.com/gudson/kpi/application/usecase/reporting"
	"github.com/gudson/kpi/application/usecase/user_management"
	"github.com/gudson/kpi/infrastructure/adapter/csvfile"
	"github.com/gudson/kpi/infrastructure/bootstrap"
	"github.com/gudson/kpi/infrastructure/config"
	"github.com/gudson/kpi/infrastructure/http/handler"
	"github.com/gudson/kpi/infrastructure/http/middleware"
	"github.com/gudson/kpi/infrastructure/http/router"
	"github.com/gudson/kpi/infrastructure/service/jwt"
	"github.com/gudson/kpi/infrastructure/service/logger"
	"github.com/gudson/kpi/infrastructure/service/metrics"
	"github.com/gudson/kpi/infrastructure/service/password"
	"github.com/gudson/kpi/infrastructure/service/ratelimit"
	"github.com/gudson/kpi/infrastructure/service/validator"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "gudson-kpi",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":         cfg.Environment,
		"storage":     cfg.StorageDriver,
		"credentials": cfg.CredentialsDriver,
	})

	// Durable storage
	snapshots, closeSnapshots, err := bootstrap.OpenSnapshotStore(ctx, cfg, cfg.StorageDriver)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open record storage", err, nil)
		log.Fatalf("Failed to open record storage: %v", err)
	}
	defer closeSnapshots()

	credentials, closeCredentials, err := bootstrap.OpenCredentialStore(ctx, cfg)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open credential store", err, nil)
		log.Fatalf("Failed to open credential store: %v", err)
	}
	defer closeCredentials()

	store, err := state.Open(ctx, snapshots, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to load records", err, nil)
		log.Fatalf("Failed to load records: %v", err)
	}

	blobs, exportPrefix, err := bootstrap.OpenBlobStore(ctx, cfg)
	if err != nil {
		// downloads keep working, only publishing is off
		structuredLogger.Warn(ctx, "Export publishing disabled", map[string]interface{}{"error": err.Error()})
	}

	// Rate limiting falls back to no-op when Redis is unreachable
	var rateLimitService outbound.RateLimitService
	rs, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
	}, logrus.New())
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limit service", err, map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
		rateLimitService = ratelimit.NewNoopRateLimitService()
	} else {
		rateLimitService = rs
	}

	// Services
	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)
	var recorder outbound.MetricsRecorder = outbound.NopMetrics{}
	var promRecorder *metrics.Recorder
	if cfg.MetricsEnabled {
		promRecorder = metrics.NewRecorder()
		recorder = promRecorder
	}
	gate := authorization.NewGate(structuredLogger)

	// Use cases
	authUseCase := auth.NewAuthUseCase(
		credentials,
		passwordService,
		tokenService,
		rateLimitService,
		auth.NewSessionRegistry(),
		recorder,
		structuredLogger,
		auth.LoginPolicy{
			MaxAttempts:   cfg.RateLimitAttempts,
			Window:        cfg.RateLimitWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
	)
	deps := records.Dependencies{
		Store:     store,
		Gate:      gate,
		Validator: validator.New(),
		Metrics:   recorder,
		Logger:    structuredLogger,
	}

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		Suppliers: handler.NewSupplierHandler(records.NewSupplierUseCase(deps)),
		Buyers:    handler.NewBuyerHandler(records.NewBuyerUseCase(deps)),
		Orders:    handler.NewOrderHandler(records.NewOrderUseCase(deps)),
		Audit:     handler.NewAuditHandler(audit.NewAuditUseCase(store, gate)),
		Reports:   handler.NewReportHandler(reporting.NewReportingUseCase(store, gate, structuredLogger)),
		Exports: handler.NewExportHandler(export.NewExportUseCase(
			store, gate, csvfile.Encoder{}, blobs, exportPrefix, structuredLogger,
		)),
		Users: handler.NewUserManagementHandler(
			user_management.NewUserManagementUseCase(credentials, passwordService, gate, structuredLogger),
		),
	}
	opts := router.Options{
		Auth:                 middleware.NewAuthMiddleware(authUseCase),
		RateLimit:            middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger),
		CORSEnabled:          cfg.CORSEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
	}
	if promRecorder != nil {
		opts.Metrics = promRecorder
		opts.MetricsHandler = promhttp.HandlerFor(promRecorder.Registry(), promhttp.HandlerOpts{})
	}

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router.New(handlers, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"host": cfg.ServerHost,
				"port": cfg.ServerPort,
			})
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
