package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "userhub-backend/observability"

// Instruments is the fixed set of metric instruments for the service.
// Created once at startup and shared by every request; recording never
// allocates new instruments.
type Instruments struct {
	RequestsTotal     metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	ActiveConnections metric.Int64UpDownCounter
	UsersCreated      metric.Int64Counter
	UsersDeleted      metric.Int64Counter
}

// NewInstruments creates the instrument set on the global meter
// provider. Init must have run first.
func NewInstruments() (*Instruments, error) {
	return NewInstrumentsWithMeter(otel.Meter(meterName))
}

// NewInstrumentsWithMeter creates the instrument set on an explicit
// meter. Tests use this with a manual reader.
func NewInstrumentsWithMeter(meter metric.Meter) (*Instruments, error) {
	requests, err := meter.Int64Counter("api_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_requests_total: %w", err)
	}

	duration, err := meter.Float64Histogram("api_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_request_duration_seconds: %w", err)
	}

	active, err := meter.Int64UpDownCounter("api_active_connections",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_active_connections: %w", err)
	}

	created, err := meter.Int64Counter("api_users_created_total",
		metric.WithDescription("Total number of users created"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_users_created_total: %w", err)
	}

	deleted, err := meter.Int64Counter("api_users_deleted_total",
		metric.WithDescription("Total number of users deleted"),
	)
	if err != nil {
		return nil, fmt.Errorf("create api_users_deleted_total: %w", err)
	}

	return &Instruments{
		RequestsTotal:     requests,
		RequestDuration:   duration,
		ActiveConnections: active,
		UsersCreated:      created,
		UsersDeleted:      deleted,
	}, nil
}

// BusinessAttrs returns the label set for the business counters.
func BusinessAttrs(environment string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("source", "api"),
		attribute.String("environment", environment),
	)
}

// RecordUserCreated increments the created-users counter. Called only
// after the store confirms the insert.
func (i *Instruments) RecordUserCreated(ctx context.Context, environment string) {
	i.UsersCreated.Add(ctx, 1, BusinessAttrs(environment))
}

// RecordUserDeleted increments the deleted-users counter. Called only
// after the store confirms the removal.
func (i *Instruments) RecordUserDeleted(ctx context.Context, environment string) {
	i.UsersDeleted.Add(ctx, 1, BusinessAttrs(environment))
}
