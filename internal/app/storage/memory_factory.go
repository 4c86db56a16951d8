package storage

import (
	"context"
	"log/slog"

	"github.com/marena/marena-api/internal/service"
	"github.com/marena/marena-api/internal/service/inmemory"
)

// MemoryFactory creates an in-process movie store. Movies do not survive a restart.
type MemoryFactory struct {
	seed []*service.Movie
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a factory whose stores start with seed
func NewMemoryFactory(seed ...*service.Movie) *MemoryFactory {
	return &MemoryFactory{seed: seed}
}

// CreateMovieStore creates a new, independent in-memory store
func (m *MemoryFactory) CreateMovieStore(_ context.Context) (service.MovieStore, error) {
	slog.Debug("Creating in-memory movie store", "seed", len(m.seed))
	return inmemory.New(inmemory.WithMovies(m.seed...))
}

// Backend returns "memory"
func (*MemoryFactory) Backend() string {
	return "memory"
}

// Cleanup is a no-op
func (*MemoryFactory) Cleanup() {}
