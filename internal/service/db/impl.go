// Package database provides a PostgreSQL implementation of the MovieStore interface
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/marena/marena-api/internal/db/sqlc"
	"github.com/marena/marena-api/internal/otel"
	"github.com/marena/marena-api/internal/service"
)

var (
	// ErrBug is returned when the database holds data the schema should
	// have made impossible
	ErrBug = errors.New("bug")
)

// PostgreSQL error codes reported as constraint violations
const (
	pgCheckViolation   = "23514"
	pgStringTooLong    = "22001"
	pgNotNullViolation = "23502"
)

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pgx pool used by the store. The caller is
// responsible for closing the pool when it is done.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the database store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbStore implements the MovieStore interface on PostgreSQL
type dbStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ service.MovieStore = (*dbStore)(nil)

// New creates a new database-backed movie store with the given options
func New(opts ...Option) (service.MovieStore, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &dbStore{
		pool:   o.pool,
		tracer: o.tracer,
	}, nil
}

// Ping checks connectivity with the database
func (s *dbStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// ListMovies returns all movies ordered by id
func (s *dbStore) ListMovies(ctx context.Context) ([]*service.Movie, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListMovies")
	defer span.End()

	rows, err := sqlc.New(s.pool).ListMovies(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*service.Movie, 0, len(rows))
	for _, row := range rows {
		movies = append(movies, toMovie(row))
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(movies)))
	slog.DebugContext(ctx, "ListMovies query",
		"count", len(movies),
		"request_id", middleware.GetReqID(ctx))

	return movies, nil
}

// FindMovie returns the movie with the given id. The lookup reads every row
// for the id so that a duplicated key is reported instead of hidden.
func (s *dbStore) FindMovie(ctx context.Context, id int64) (*service.Movie, error) {
	ctx, span := s.startSpan(ctx, "dbStore.FindMovie",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()

	rows, err := sqlc.New(s.pool).FindMoviesByID(ctx, id)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to find movie %d: %w", id, err)
	}

	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%w: %d", service.ErrMovieNotFound, id)
	case 1:
		return toMovie(rows[0]), nil
	default:
		err := fmt.Errorf("%w: %d rows share movie id %d", ErrBug, len(rows), id)
		otel.RecordError(span, err)
		return nil, err
	}
}

// MovieExists reports whether a movie with the given id is stored
func (s *dbStore) MovieExists(ctx context.Context, id int64) (bool, error) {
	ctx, span := s.startSpan(ctx, "dbStore.MovieExists",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()

	exists, err := sqlc.New(s.pool).MovieExists(ctx, id)
	if err != nil {
		otel.RecordError(span, err)
		return false, fmt.Errorf("failed to check movie %d: %w", id, err)
	}
	return exists, nil
}

// InsertMovie inserts movie and returns the stored row
func (s *dbStore) InsertMovie(ctx context.Context, movie *service.Movie) (*service.Movie, error) {
	ctx, span := s.startSpan(ctx, "dbStore.InsertMovie")
	defer span.End()

	if movie == nil {
		return nil, fmt.Errorf("%w: movie is nil", service.ErrConstraintViolation)
	}

	row, err := sqlc.New(s.pool).InsertMovie(ctx, sqlc.InsertMovieParams{
		Name:   movie.Name,
		Score:  movie.Score,
		Genres: movie.Genres,
		Year:   movie.Year,
	})
	if err != nil {
		err = mapWriteError(err)
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}

	span.SetAttributes(otel.AttrMovieID.Int64(row.ID))
	return toMovie(row), nil
}

// ReplaceMovie overwrites the row with movie.ID in a single statement. The
// statement matches no row when the movie is gone or when movie.Version is
// set and no longer current; both cases are reported as ErrStaleMovie.
func (s *dbStore) ReplaceMovie(ctx context.Context, movie *service.Movie) (*service.Movie, error) {
	if movie == nil {
		return nil, fmt.Errorf("%w: movie is nil", service.ErrConstraintViolation)
	}

	ctx, span := s.startSpan(ctx, "dbStore.ReplaceMovie",
		trace.WithAttributes(
			otel.AttrMovieID.Int64(movie.ID),
			otel.AttrMovieVersion.Int(int(movie.Version)),
		))
	defer span.End()

	params := sqlc.ReplaceMovieParams{
		ID:     movie.ID,
		Name:   movie.Name,
		Score:  movie.Score,
		Genres: movie.Genres,
		Year:   movie.Year,
	}
	if movie.Version != 0 {
		expected := movie.Version
		params.ExpectedVersion = &expected
	}

	row, err := sqlc.New(s.pool).ReplaceMovie(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("%w: %d", service.ErrStaleMovie, movie.ID)
		} else {
			err = mapWriteError(err)
		}
		otel.RecordError(span, err)
		return nil, err
	}

	return toMovie(row), nil
}

// RemoveMovie deletes the movie with the given id
func (s *dbStore) RemoveMovie(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "dbStore.RemoveMovie",
		trace.WithAttributes(otel.AttrMovieID.Int64(id)))
	defer span.End()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}()

	affected, err := sqlc.New(tx).DeleteMovie(ctx, id)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", service.ErrMovieNotFound, id)
	}

	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// mapWriteError turns constraint failures reported by PostgreSQL into
// ErrConstraintViolation and leaves other errors untouched
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgCheckViolation, pgStringTooLong, pgNotNullViolation:
		return fmt.Errorf("%w: %s", service.ErrConstraintViolation, pgErr.Message)
	default:
		return err
	}
}

func toMovie(row sqlc.Movie) *service.Movie {
	return &service.Movie{
		ID:      row.ID,
		Name:    row.Name,
		Score:   row.Score,
		Genres:  row.Genres,
		Year:    row.Year,
		Version: row.Version,
	}
}
