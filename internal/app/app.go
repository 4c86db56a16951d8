// Package app wires configuration, storage, telemetry and the HTTP API into a
// runnable Marena server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marena/marena-api/internal/config"
)

// MarenaApp encapsulates all components needed to run the Marena API server.
// It provides lifecycle management and graceful shutdown.
type MarenaApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start serves HTTP on the configured address.
// It blocks until the server stops or fails.
func (app *MarenaApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(listener)
}

// Serve serves HTTP on listener. It blocks until the server stops or fails.
func (app *MarenaApp) Serve(listener net.Listener) error {
	slog.Info("Server listening",
		"address", listener.Addr().String(),
		"storage", app.components.StorageBackend,
	)

	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down, waiting at most timeout for
// in-flight requests, then releases storage resources
func (app *MarenaApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// Context is cancelled once the app has stopped
func (app *MarenaApp) Context() context.Context {
	return app.ctx
}

// GetConfig returns the application configuration
func (app *MarenaApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *MarenaApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired application components
func (app *MarenaApp) Components() *AppComponents {
	return app.components
}
