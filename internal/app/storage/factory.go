// Package storage creates the movie store selected by configuration and owns
// the resources behind it.
package storage

import (
	"context"
	"fmt"

	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
)

// Factory creates the movie store for one storage backend.
//
// Cleanup releases whatever the store holds (the connection pool for the
// database backend) and must be called once the application is done with it.
type Factory interface {
	// CreateMovieStore returns the store served by this factory
	CreateMovieStore(ctx context.Context) (service.MovieStore, error)

	// Backend names the storage backend, as used in logs and metrics
	Backend() string

	// Cleanup releases the factory's resources
	Cleanup()
}

// NewStorageFactory creates a factory for the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.GetStorage() {
	case config.StorageDatabase:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageMemory:
		return NewMemoryFactory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorage())
	}
}
