package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	marenaapp "github.com/marena/marena-api/internal/app"
	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/telemetry"
	"github.com/marena/marena-api/pkg/versions"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	telemetryFlushTimeout  = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the movie API server",
		Long: `Start the movie API server.

The configuration file (--config) selects the storage backend (memory or
database), the PostgreSQL connection settings and OpenTelemetry export.
Flags can also be set through MARENA_ prefixed environment variables.

See the examples/ directory for sample configurations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().Duration("graceful-timeout", defaultGracefulTimeout, "Time allowed for in-flight requests on shutdown")

	for _, name := range []string{"address", "config", "graceful-timeout"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", name, err))
		}
	}

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configPath := v.GetString("config")
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", configPath, "storage", cfg.GetStorage())

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithServiceVersion(versions.Get().Version),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(flushCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	opts := []marenaapp.MarenaAppOptions{
		marenaapp.WithConfig(cfg),
		marenaapp.WithAddress(v.GetString("address")),
	}
	if cfg.Telemetry.TracingEnabled() {
		opts = append(opts, marenaapp.WithTracerProvider(tel.TracerProvider()))
	}
	if cfg.Telemetry.MetricsEnabled() {
		opts = append(opts, marenaapp.WithMeterProvider(tel.MeterProvider()))
	}

	server, err := marenaapp.NewMarenaApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err := <-serveErr:
		if stopErr := server.Stop(v.GetDuration("graceful-timeout")); stopErr != nil {
			slog.Error("Failed to stop server", "error", stopErr)
		}
		return err
	case <-sigCtx.Done():
	}

	if err := server.Stop(v.GetDuration("graceful-timeout")); err != nil {
		return err
	}
	return <-serveErr
}
