package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"userhub-backend/interfaces/http/rest"
	"userhub-backend/internal/config"
	"userhub-backend/internal/observability"
	"userhub-backend/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startTime := time.Now()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Telemetry must be live before any route registration so every
	// request is captured.
	provider, err := observability.Init(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	instruments, err := observability.NewInstruments()
	if err != nil {
		logger.Fatal("Failed to create metric instruments", zap.Error(err))
	}

	userStore := store.NewMemoryStore()

	router := rest.NewRouter(cfg, logger, userStore, instruments, provider.MetricsHandler(), startTime)

	// otelhttp creates the server span for every request; the
	// instrumentation middleware renames it once the route is resolved.
	handler := otelhttp.NewHandler(router.Setup(), "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.Addr()),
			zap.String("environment", cfg.Environment),
			zap.String("version", cfg.ServiceVersion),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	// Both the HTTP drain and the telemetry flush share one deadline;
	// the process exits when it elapses even if an exporter hangs.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := provider.Shutdown(shutdownCtx); err != nil {
		logger.Error("Telemetry shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
