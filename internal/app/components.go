package app

import (
	"github.com/marena/marena-api/internal/service"
)

// AppComponents groups the application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// MovieService provides the movie catalogue logic
	MovieService service.MovieService

	// StorageBackend names the store behind MovieService
	StorageBackend string
}
