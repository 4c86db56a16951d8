package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/marena/marena-api/internal/otel"
	"github.com/marena/marena-api/internal/telemetry"
)

// ServiceTracerName is the name used for the movie service tracer
const ServiceTracerName = "github.com/marena/marena-api/service"

// options holds configuration options for the movie service
type options struct {
	tracer  trace.Tracer
	metrics *telemetry.MovieMetrics
}

// Option is a functional option for configuring the movie service
type Option func(*options) error

// WithTracer sets the OpenTelemetry tracer for the movie service.
// If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithMetrics sets the movie operation metrics. Nil disables them.
func WithMetrics(metrics *telemetry.MovieMetrics) Option {
	return func(o *options) error {
		o.metrics = metrics
		return nil
	}
}

// movieSvc implements MovieService on top of a MovieStore
type movieSvc struct {
	store   MovieStore
	tracer  trace.Tracer
	metrics *telemetry.MovieMetrics
}

var _ MovieService = (*movieSvc)(nil)

// New creates a movie service backed by store
func New(store MovieStore, opts ...Option) (MovieService, error) {
	if store == nil {
		return nil, errors.New("movie store is required")
	}

	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return &movieSvc{
		store:   store,
		tracer:  o.tracer,
		metrics: o.metrics,
	}, nil
}

// CheckReadiness checks if the store is reachable
func (s *movieSvc) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("movie store not ready: %w", err)
	}
	return nil
}

// ListMovies returns all movies
func (s *movieSvc) ListMovies(ctx context.Context) (movies []*Movie, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "movieSvc.ListMovies")
	defer span.End()
	defer s.record(ctx, "list", time.Now(), &err)

	movies, err = s.store.ListMovies(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if movies == nil {
		movies = []*Movie{}
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(movies)))
	s.metrics.RecordMoviesTotal(ctx, int64(len(movies)))

	return movies, nil
}

// GetMovie returns a single movie
func (s *movieSvc) GetMovie(ctx context.Context, id int64) (movie *Movie, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "movieSvc.GetMovie",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()
	defer s.record(ctx, "get", time.Now(), &err)

	movie, err = s.store.FindMovie(ctx, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return movie, nil
}

// CreateMovie inserts a movie under a store-assigned id
func (s *movieSvc) CreateMovie(ctx context.Context, movie *Movie) (created *Movie, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "movieSvc.CreateMovie")
	defer span.End()
	defer s.record(ctx, "create", time.Now(), &err)

	if movie == nil {
		err = errors.New("movie is required")
		otel.RecordError(span, err)
		return nil, err
	}

	// The store owns identity and versioning
	toInsert := movie.Clone()
	toInsert.ID = 0
	toInsert.Version = 0

	created, err = s.store.InsertMovie(ctx, toInsert)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	span.SetAttributes(otel.AttrMovieID.Int64(created.ID))
	slog.InfoContext(ctx, "Movie created",
		"movie_id", created.ID,
		"request_id", middleware.GetReqID(ctx))

	return created, nil
}

// UpdateMovie replaces the movie with the given id. A replace that matches no
// row is resolved by checking whether the movie still exists: a missing movie
// is reported as ErrMovieNotFound, while a concurrent modification is
// returned as the store's ErrStaleMovie without retrying.
func (s *movieSvc) UpdateMovie(ctx context.Context, id int64, movie *Movie) (updated *Movie, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "movieSvc.UpdateMovie",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()
	defer s.record(ctx, "update", time.Now(), &err)

	if movie == nil || movie.ID != id {
		err = fmt.Errorf("%w: %d", ErrMovieIDMismatch, id)
		otel.RecordError(span, err)
		return nil, err
	}

	updated, err = s.store.ReplaceMovie(ctx, movie)
	if err == nil {
		span.SetAttributes(otel.AttrMovieVersion.Int(int(updated.Version)))
		slog.DebugContext(ctx, "Movie updated",
			"movie_id", id,
			"version", updated.Version,
			"request_id", middleware.GetReqID(ctx))
		return updated, nil
	}

	if !errors.Is(err, ErrStaleMovie) {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to update movie %d: %w", id, err)
	}

	exists, checkErr := s.store.MovieExists(ctx, id)
	if checkErr != nil {
		otel.RecordError(span, checkErr)
		return nil, fmt.Errorf("failed to check movie %d after conflict: %w", id, checkErr)
	}
	if !exists {
		err = fmt.Errorf("%w: %d", ErrMovieNotFound, id)
		otel.RecordError(span, err)
		return nil, err
	}

	slog.WarnContext(ctx, "Movie update lost a concurrent modification",
		"movie_id", id,
		"version", movie.Version,
		"request_id", middleware.GetReqID(ctx))
	err = fmt.Errorf("failed to update movie %d: %w", id, err)
	otel.RecordError(span, err)
	return nil, err
}

// DeleteMovie removes a movie. It reports false when there was nothing to
// remove. A movie that disappears between lookup and removal is a failure.
func (s *movieSvc) DeleteMovie(ctx context.Context, id int64) (deleted bool, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "movieSvc.DeleteMovie",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()
	start := time.Now()
	removeFailed := false
	defer func() {
		outcome := outcomeOf(err)
		switch {
		case removeFailed:
			outcome = telemetry.OutcomeError
		case err == nil && !deleted:
			outcome = telemetry.OutcomeNotFound
		}
		s.metrics.RecordOperation(ctx, "delete", outcome, time.Since(start))
	}()

	if _, err = s.store.FindMovie(ctx, id); err != nil {
		if errors.Is(err, ErrMovieNotFound) {
			return false, nil
		}
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to look up movie %d: %w", id, err)
	}

	if err = s.store.RemoveMovie(ctx, id); err != nil {
		removeFailed = true
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to delete movie %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Movie deleted",
		"movie_id", id,
		"request_id", middleware.GetReqID(ctx))
	return true, nil
}

// record reports the outcome of an operation. errp is read when the deferred
// call runs so that it sees the final error.
func (s *movieSvc) record(ctx context.Context, operation string, start time.Time, errp *error) {
	s.metrics.RecordOperation(ctx, operation, outcomeOf(*errp), time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, ErrMovieNotFound):
		return telemetry.OutcomeNotFound
	case errors.Is(err, ErrMovieIDMismatch), errors.Is(err, ErrConstraintViolation):
		return telemetry.OutcomeRejected
	case errors.Is(err, ErrStaleMovie):
		return telemetry.OutcomeConflict
	default:
		return telemetry.OutcomeError
	}
}
