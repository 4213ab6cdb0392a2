package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/vasyakrg/tbank-test-gateway/internal/app"
	"github.com/vasyakrg/tbank-test-gateway/internal/config"
	"github.com/vasyakrg/tbank-test-gateway/internal/handler"
	"github.com/vasyakrg/tbank-test-gateway/internal/logging"
	"github.com/vasyakrg/tbank-test-gateway/internal/repository/memory"
	"github.com/vasyakrg/tbank-test-gateway/internal/service"
	"github.com/vasyakrg/tbank-test-gateway/internal/webhook"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger()
	defer func() { _ = logger.Sync() }()

	// Optional New Relic instrumentation.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			logger.Errorw("failed to initialize New Relic", "error", err)
		} else {
			logger.Infow("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	// Optional Redis for the idempotency layer.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		cancel()
		if err != nil {
			logger.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis, idempotency layer enabled")
	}

	// Wire dependencies.
	repo := memory.NewPaymentRepository()

	notifier, err := webhook.NewNotifier(repo, cfg.Gateway.Password, cfg.Webhook.Workers, cfg.Webhook.Timeout, logger)
	if err != nil {
		logger.Fatalw("failed to create webhook notifier", "error", err)
	}

	paymentService := service.NewPaymentService(repo, notifier, logger)

	router := app.NewRouter(app.RouterDeps{
		Gateway:     handler.NewGatewayHandler(paymentService, cfg.Gateway.TerminalKey, cfg.Gateway.Password, cfg.Gateway.BaseURL, logger),
		Page:        handler.NewPageHandler(paymentService, logger),
		Monitor:     handler.NewMonitorHandler(repo),
		RedisClient: redisClient,
		NewRelicApp: nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infow("TBank gateway emulator running",
			"port", cfg.Server.Port,
			"terminal_key", cfg.Gateway.TerminalKey,
			"base_url", cfg.Gateway.BaseURL,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalw("server forced to shutdown", "error", err)
	}

	// Drain pending webhook dispatches before exiting.
	if err := notifier.Close(); err != nil {
		logger.Errorw("notifier shutdown", "error", err)
	}

	logger.Info("Server exited")
}
