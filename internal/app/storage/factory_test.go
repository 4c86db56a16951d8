package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
)

func TestNewStorageFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         *config.Config
		wantBackend string
		wantErr     string
	}{
		{name: "nil config", wantErr: "config cannot be nil"},
		{name: "default is memory", cfg: &config.Config{}, wantBackend: "memory"},
		{name: "explicit memory", cfg: &config.Config{Storage: config.StorageMemory}, wantBackend: "memory"},
		{name: "unknown type", cfg: &config.Config{Storage: "redis"}, wantErr: "unknown storage type: redis"},
		{
			name:    "database without settings",
			cfg:     &config.Config{Storage: config.StorageDatabase},
			wantErr: "database configuration is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory, err := NewStorageFactory(context.Background(), tt.cfg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(factory.Cleanup)
			assert.Equal(t, tt.wantBackend, factory.Backend())
		})
	}
}

func TestMemoryFactory_CreateMovieStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	factory := NewMemoryFactory(&service.Movie{Name: "Alien", Score: 8.5, Genres: "Horror", Year: 1979})
	t.Cleanup(factory.Cleanup)

	first, err := factory.CreateMovieStore(ctx)
	require.NoError(t, err)
	second, err := factory.CreateMovieStore(ctx)
	require.NoError(t, err)

	_, err = first.InsertMovie(ctx, &service.Movie{Name: "Aliens", Score: 8.4, Genres: "Action", Year: 1986})
	require.NoError(t, err)

	firstMovies, err := first.ListMovies(ctx)
	require.NoError(t, err)
	secondMovies, err := second.ListMovies(ctx)
	require.NoError(t, err)

	assert.Len(t, firstMovies, 2)
	require.Len(t, secondMovies, 1)
	assert.Equal(t, "Alien", secondMovies[0].Name)
}

func TestMemoryFactory_InvalidSeed(t *testing.T) {
	t.Parallel()

	factory := NewMemoryFactory(&service.Movie{Name: "", Score: 5, Genres: "Drama", Year: 2000})
	_, err := factory.CreateMovieStore(context.Background())
	require.Error(t, err)
}
