package database

import (
	"context"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/marena/marena-api/internal/otel"
)

// ServiceTracerName is the name used for the database store tracer
const ServiceTracerName = "github.com/marena/marena-api/service/db"

// startSpan starts a client span for a database call. Every span carries
// db.system=postgresql and the storage backend. With no tracer configured it
// returns ctx unchanged and a non-recording span.
func (s *dbStore) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	opts = append([]trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemPostgreSQL,
			otel.AttrStorageBackend.String("database"),
		),
	}, opts...)
	return s.tracer.Start(ctx, name, opts...)
}
