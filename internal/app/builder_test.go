package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/marena/marena-api/internal/app/storage"
	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
)

// fakeFactory records cleanup and can fail store creation
type fakeFactory struct {
	storage.Factory
	createErr error
	cleanedUp bool
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{Factory: storage.NewMemoryFactory()}
}

func (f *fakeFactory) CreateMovieStore(ctx context.Context) (service.MovieStore, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Factory.CreateMovieStore(ctx)
}

func (f *fakeFactory) Cleanup() {
	f.cleanedUp = true
}

func TestBaseConfig_Defaults(t *testing.T) {
	t.Parallel()

	built, err := baseConfig(WithConfig(&config.Config{}))
	require.NoError(t, err)
	assert.Equal(t, defaultHTTPAddress, built.address)
	assert.Equal(t, defaultRequestTimeout, built.requestTimeout)
	assert.Nil(t, built.middlewares)
}

func TestWithAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "port only", address: ":9090"},
		{name: "localhost", address: "localhost:8080"},
		{name: "ipv4", address: "127.0.0.1:8080"},
		{name: "empty", address: "", wantErr: true},
		{name: "missing port", address: ":", wantErr: true},
		{name: "no colon", address: "8080", wantErr: true},
		{name: "non numeric port", address: ":http", wantErr: true},
		{name: "hostname", address: "example.com:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			built, err := baseConfig(WithAddress(tt.address))
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, built)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, built.address)
		})
	}
}

func TestWithRequestTimeout(t *testing.T) {
	t.Parallel()

	built, err := baseConfig(WithRequestTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, built.requestTimeout)

	_, err = baseConfig(WithRequestTimeout(0))
	require.Error(t, err)
}

func TestNewMarenaApp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        func(f *fakeFactory) []MarenaAppOptions
		wantErr     string
		wantCleanup bool
	}{
		{
			name: "memory storage from config",
			opts: func(*fakeFactory) []MarenaAppOptions {
				return []MarenaAppOptions{WithConfig(&config.Config{Storage: config.StorageMemory})}
			},
		},
		{
			name: "injected factory",
			opts: func(f *fakeFactory) []MarenaAppOptions {
				return []MarenaAppOptions{WithConfig(&config.Config{}), WithStorageFactory(f)}
			},
		},
		{
			name: "missing config",
			opts: func(*fakeFactory) []MarenaAppOptions {
				return nil
			},
			wantErr: "config cannot be nil",
		},
		{
			name: "invalid address",
			opts: func(*fakeFactory) []MarenaAppOptions {
				return []MarenaAppOptions{WithConfig(&config.Config{}), WithAddress(":")}
			},
			wantErr: "failed to build base configuration",
		},
		{
			name: "database storage without settings",
			opts: func(*fakeFactory) []MarenaAppOptions {
				return []MarenaAppOptions{WithConfig(&config.Config{Storage: config.StorageDatabase})}
			},
			wantErr: "failed to create storage factory",
		},
		{
			name: "store creation fails and factory is cleaned up",
			opts: func(f *fakeFactory) []MarenaAppOptions {
				f.createErr = errors.New("boom")
				return []MarenaAppOptions{WithConfig(&config.Config{}), WithStorageFactory(f)}
			},
			wantErr:     "failed to create movie store",
			wantCleanup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			factory := newFakeFactory()
			app, err := NewMarenaApp(context.Background(), tt.opts(factory)...)
			assert.Equal(t, tt.wantCleanup, factory.cleanedUp)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, app)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, app.GetHTTPServer())
			assert.Equal(t, "memory", app.Components().StorageBackend)
			assert.NotNil(t, app.Components().MovieService)
			assert.NotNil(t, app.GetConfig())
		})
	}
}

func TestNewMarenaApp_Telemetry(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	app, err := NewMarenaApp(context.Background(),
		WithConfig(&config.Config{}),
		WithMeterProvider(mp),
		WithTracerProvider(tp),
	)
	require.NoError(t, err)

	rec := doRequest(t, app.GetHTTPServer().Handler, http.MethodGet, "/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["marena_http_requests_total"])
	assert.True(t, names["marena_movie_operations_total"])

	var spanNames []string
	for _, s := range recorder.Ended() {
		spanNames = append(spanNames, s.Name())
	}
	require.Len(t, spanNames, 2)
	assert.Equal(t, "movieSvc.ListMovies", spanNames[0])
	assert.True(t, strings.HasPrefix(spanNames[1], "GET /movies"), "got span %q", spanNames[1])
}
