// Package otel provides span helpers shared by the movie service and its stores.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for movie operations.
const (
	AttrMovieID        = attribute.Key("movie.id")
	AttrMovieVersion   = attribute.Key("movie.version")
	AttrResultCount    = attribute.Key("result.count")
	AttrStorageBackend = attribute.Key("storage.backend")
	AttrOutcome        = attribute.Key("operation.outcome")
)

// StartSpan starts a span on tracer. When tracer is nil, ctx is returned
// unchanged with a non-recording span, so ending it leaves the caller's span
// open.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks the span as failed. The status description stays generic
// so that query text never ends up in it; the error itself is kept in the
// exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
