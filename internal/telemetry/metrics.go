// Package telemetry provides OpenTelemetry instrumentation for the Marena API server.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MovieMetricsMeterName is the name used for the movie operation metrics meter
	MovieMetricsMeterName = "github.com/marena/marena-api/movies"
)

// Outcomes recorded on movie operation metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// MovieMetrics holds the OpenTelemetry instruments for movie operations
type MovieMetrics struct {
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
	moviesTotal       metric.Int64Gauge
}

// NewMovieMetrics creates a new MovieMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewMovieMetrics(provider metric.MeterProvider) (*MovieMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MovieMetricsMeterName)

	operationsTotal, err := meter.Int64Counter(
		"marena_movie_operations_total",
		metric.WithDescription("Total number of movie operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"marena_movie_operation_duration_seconds",
		metric.WithDescription("Duration of movie operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	if err != nil {
		return nil, err
	}

	moviesTotal, err := meter.Int64Gauge(
		"marena_movies_total",
		metric.WithDescription("Number of movies returned by the last full listing"),
		metric.WithUnit("{movie}"),
	)
	if err != nil {
		return nil, err
	}

	return &MovieMetrics{
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
		moviesTotal:       moviesTotal,
	}, nil
}

// RecordOperation records the outcome and duration of a movie operation
func (m *MovieMetrics) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	if m == nil || m.operationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)

	m.operationsTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMoviesTotal records the current number of stored movies
func (m *MovieMetrics) RecordMoviesTotal(ctx context.Context, count int64) {
	if m == nil || m.moviesTotal == nil {
		return
	}

	m.moviesTotal.Record(ctx, count)
}
