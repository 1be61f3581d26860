// Package config loads the service configuration from environment
// variables with documented defaults.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every runtime setting for the service.
type Config struct {
	Port           int    `env:"PORT,default=8080"`
	ServiceName    string `env:"SERVICE_NAME,default=userhub-api"`
	ServiceVersion string `env:"SERVICE_VERSION,default=1.0.0"`
	Environment    string `env:"ENVIRONMENT,default=development"`

	// OTLPEndpoint is the gRPC address of the telemetry collector.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`

	// ShutdownTimeout bounds both the HTTP drain and the telemetry flush
	// so a hung exporter can never wedge a deployment.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	// LoadTestMaxIterations caps the CPU-bound /load-test loop.
	LoadTestMaxIterations int `env:"LOAD_TEST_MAX_ITERATIONS,default=1000000"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("load config from environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.LoadTestMaxIterations <= 0 {
		return Config{}, fmt.Errorf("LOAD_TEST_MAX_ITERATIONS must be positive, got %d", cfg.LoadTestMaxIterations)
	}
	return cfg, nil
}

// IsProduction reports whether error messages should be redacted.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
