package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/marena/marena-api/database"
	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
	dbstore "github.com/marena/marena-api/internal/service/db"
)

// DatabaseFactory creates PostgreSQL-backed movie stores sharing one pool
type DatabaseFactory struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption configures the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the tracer handed to the database store.
// If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// NewDatabaseFactory applies pending migrations and opens the connection pool
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory",
		"host", cfg.Database.Host,
		"database", cfg.Database.Database,
	)

	connStr, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	if err := database.MigrateUp(connStr); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := buildConnectionPool(ctx, connStr, cfg.Database)
	if err != nil {
		return nil, err
	}

	factory := &DatabaseFactory{pool: pool}
	for _, opt := range opts {
		opt(factory)
	}

	return factory, nil
}

// CreateMovieStore creates a store on the shared pool
func (d *DatabaseFactory) CreateMovieStore(_ context.Context) (service.MovieStore, error) {
	slog.Debug("Creating database-backed movie store")

	opts := []dbstore.Option{
		dbstore.WithConnectionPool(d.pool),
	}
	if d.tracer != nil {
		opts = append(opts, dbstore.WithTracer(d.tracer))
		slog.Debug("Database store tracing enabled")
	}

	return dbstore.New(opts...)
}

// Backend returns "database"
func (*DatabaseFactory) Backend() string {
	return "database"
}

// Cleanup closes the connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}

func buildConnectionPool(ctx context.Context, connStr string, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	lifetime, err := cfg.GetConnMaxLifetime()
	if err != nil {
		return nil, err
	}
	if lifetime > 0 {
		poolConfig.MaxConnLifetime = lifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	slog.Info("Database connection pool created",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)
	return pool, nil
}
