// Package inmemory provides an in-memory implementation of the MovieStore interface
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/marena/marena-api/internal/service"
	"github.com/marena/marena-api/internal/validators"
)

// store keeps movies in a map guarded by a read-write mutex. Callers always
// receive copies.
type store struct {
	mu     sync.RWMutex
	movies map[int64]*service.Movie
	nextID int64
}

var _ service.MovieStore = (*store)(nil)

// Option is a functional option for configuring the in-memory store
type Option func(*store) error

// WithMovies seeds the store. Seeded movies get consecutive ids starting at
// 1 and version 1, regardless of the ids they carry.
func WithMovies(movies ...*service.Movie) Option {
	return func(s *store) error {
		for i, m := range movies {
			if err := validate(m); err != nil {
				return fmt.Errorf("invalid seed movie %d: %w", i, err)
			}
			s.add(m)
		}
		return nil
	}
}

// New creates an empty in-memory movie store
func New(opts ...Option) (service.MovieStore, error) {
	s := &store{
		movies: make(map[int64]*service.Movie),
		nextID: 1,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Ping always succeeds
func (*store) Ping(context.Context) error {
	return nil
}

// ListMovies returns copies of all movies ordered by id
func (s *store) ListMovies(ctx context.Context) ([]*service.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*service.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		result = append(result, m.Clone())
	}
	slices.SortFunc(result, func(a, b *service.Movie) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// FindMovie returns a copy of the movie with the given id
func (s *store) FindMovie(ctx context.Context, id int64) (*service.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrMovieNotFound, id)
	}
	return m.Clone(), nil
}

// MovieExists reports whether the id is stored
func (s *store) MovieExists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.movies[id]
	return ok, nil
}

// InsertMovie stores a copy of movie under the next id
func (s *store) InsertMovie(ctx context.Context, movie *service.Movie) (*service.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(movie); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.add(movie)
	slog.DebugContext(ctx, "Inserted movie in memory",
		"movie_id", stored.ID,
		"request_id", middleware.GetReqID(ctx))
	return stored.Clone(), nil
}

// ReplaceMovie overwrites the stored movie when it exists and, if movie
// carries a version, when that version is current
func (s *store) ReplaceMovie(ctx context.Context, movie *service.Movie) (*service.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(movie); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.movies[movie.ID]
	if !ok || (movie.Version != 0 && movie.Version != current.Version) {
		return nil, fmt.Errorf("%w: %d", service.ErrStaleMovie, movie.ID)
	}

	replaced := movie.Clone()
	replaced.Version = current.Version + 1
	s.movies[movie.ID] = replaced
	return replaced.Clone(), nil
}

// RemoveMovie deletes the movie with the given id
func (s *store) RemoveMovie(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return fmt.Errorf("%w: %d", service.ErrMovieNotFound, id)
	}
	delete(s.movies, id)
	return nil
}

// add stores a copy of m under the next id. The caller holds the write lock
// or has exclusive access.
func (s *store) add(m *service.Movie) *service.Movie {
	stored := m.Clone()
	stored.ID = s.nextID
	stored.Version = 1
	s.movies[stored.ID] = stored
	s.nextID++
	return stored
}

func validate(m *service.Movie) error {
	if m == nil {
		return fmt.Errorf("%w: movie is nil", service.ErrConstraintViolation)
	}
	if err := validators.ValidateMovieFields(m.Name, m.Score, m.Genres, m.Year); err != nil {
		return fmt.Errorf("%w: %w", service.ErrConstraintViolation, err)
	}
	return nil
}
