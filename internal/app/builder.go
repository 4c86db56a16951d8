package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/marena/marena-api/internal/api"
	"github.com/marena/marena-api/internal/app/storage"
	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
	dbstore "github.com/marena/marena-api/internal/service/db"
	"github.com/marena/marena-api/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// MarenaAppOptions configures the app builder
type MarenaAppOptions func(*marenaAppConfig) error

type marenaAppConfig struct {
	config *config.Config

	// Injected for tests, built from config otherwise
	storageFactory storage.Factory

	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func baseConfig(opts ...MarenaAppOptions) (*marenaAppConfig, error) {
	cfg := &marenaAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewMarenaApp builds the application from the given options
func NewMarenaApp(ctx context.Context, opts ...MarenaAppOptions) (*MarenaApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.storageFactory == nil {
		var factoryOpts []storage.DatabaseFactoryOption
		if cfg.tracerProvider != nil {
			factoryOpts = append(factoryOpts, storage.WithTracer(cfg.tracerProvider.Tracer(dbstore.ServiceTracerName)))
		}
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config, factoryOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	movieService, err := buildServiceComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build service components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, movieService)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	factory := cfg.storageFactory
	cancelFunc := func() {
		factory.Cleanup()
		cancel()
	}

	return &MarenaApp{
		config: cfg.config,
		components: &AppComponents{
			MovieService:   movieService,
			StorageBackend: factory.Backend(),
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout bounds how long a single request may run
func WithRequestTimeout(timeout time.Duration) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive, got %s", timeout)
		}
		cfg.requestTimeout = timeout
		return nil
	}
}

// WithStorageFactory injects the storage factory
func WithStorageFactory(f storage.Factory) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithMeterProvider enables HTTP and movie metrics
func WithMeterProvider(mp metric.MeterProvider) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider enables HTTP, service and database tracing
func WithTracerProvider(tp trace.TracerProvider) MarenaAppOptions {
	return func(cfg *marenaAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// buildServiceComponents creates the movie store and the service on top of it
func buildServiceComponents(ctx context.Context, b *marenaAppConfig) (service.MovieService, error) {
	slog.Info("Initializing service components", "storage", b.storageFactory.Backend())

	store, err := b.storageFactory.CreateMovieStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie store: %w", err)
	}

	var svcOpts []service.Option
	if b.tracerProvider != nil {
		svcOpts = append(svcOpts, service.WithTracer(b.tracerProvider.Tracer(service.ServiceTracerName)))
	}
	if b.meterProvider != nil {
		movieMetrics, err := telemetry.NewMovieMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create movie metrics: %w", err)
		}
		svcOpts = append(svcOpts, service.WithMetrics(movieMetrics))
		slog.Info("Movie metrics enabled")
	}

	svc, err := service.New(store, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie service: %w", err)
	}

	slog.Info("Service components initialized successfully")
	return svc, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *marenaAppConfig, svc service.MovieService) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	if b.tracerProvider != nil {
		middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, middlewares...)
		slog.Info("HTTP tracing middleware enabled")
	}

	// Outermost so that every request is counted
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, middlewares...)
		slog.Info("HTTP metrics middleware enabled")
	}

	router := api.NewServer(svc, api.WithMiddlewares(middlewares...))

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
