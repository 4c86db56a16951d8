// Package service provides the business logic of the Marena movie API
package service

import (
	"context"
	"errors"
)

var (
	// ErrMovieNotFound is returned when no movie has the requested id
	ErrMovieNotFound = errors.New("movie not found")
	// ErrMovieIDMismatch is returned when an update targets an id different
	// from the id carried by the movie
	ErrMovieIDMismatch = errors.New("movie id does not match target id")
	// ErrStaleMovie is returned by a store when a replace matched no row,
	// either because the row is gone or because its version moved on
	ErrStaleMovie = errors.New("movie was modified or deleted concurrently")
	// ErrConstraintViolation is returned by a store when a write breaks a
	// field constraint
	ErrConstraintViolation = errors.New("movie violates storage constraints")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go MovieService,MovieStore

// MovieService defines the operations on the movie catalogue
type MovieService interface {
	// CheckReadiness checks if the service can reach its store
	CheckReadiness(ctx context.Context) error

	// ListMovies returns every movie, ordered by id
	ListMovies(ctx context.Context) ([]*Movie, error)

	// GetMovie returns the movie with the given id
	GetMovie(ctx context.Context, id int64) (*Movie, error)

	// CreateMovie stores a new movie. Any id carried by movie is ignored.
	CreateMovie(ctx context.Context, movie *Movie) (*Movie, error)

	// UpdateMovie replaces all fields of the movie with the given id.
	// movie.ID must equal id.
	UpdateMovie(ctx context.Context, id int64, movie *Movie) (*Movie, error)

	// DeleteMovie removes the movie with the given id and reports whether
	// a movie was removed
	DeleteMovie(ctx context.Context, id int64) (bool, error)
}

// MovieStore is the persistence context used by the movie service. Every
// call is its own unit of work.
type MovieStore interface {
	// Ping checks connectivity with the backing storage
	Ping(ctx context.Context) error

	// ListMovies returns all stored movies ordered by id
	ListMovies(ctx context.Context) ([]*Movie, error)

	// FindMovie returns the movie with the given id or ErrMovieNotFound
	FindMovie(ctx context.Context, id int64) (*Movie, error)

	// MovieExists reports whether a movie with the given id is stored
	MovieExists(ctx context.Context, id int64) (bool, error)

	// InsertMovie stores movie under a newly assigned id with version 1
	InsertMovie(ctx context.Context, movie *Movie) (*Movie, error)

	// ReplaceMovie overwrites the row with movie.ID. It fails with
	// ErrStaleMovie when the row is gone, or when movie.Version is non-zero
	// and differs from the stored version.
	ReplaceMovie(ctx context.Context, movie *Movie) (*Movie, error)

	// RemoveMovie deletes the row with the given id or returns ErrMovieNotFound
	RemoveMovie(ctx context.Context, id int64) error
}
