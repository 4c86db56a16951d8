package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newMovieRouter(middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Get("/movies/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/movies", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider passes through", func(t *testing.T) {
		t.Parallel()

		mw, err := MetricsMiddleware(nil)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		newMovieRouter(mw).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("records requests by route pattern", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		mw, err := MetricsMiddleware(mp)
		require.NoError(t, err)
		router := newMovieRouter(mw)

		for _, path := range []string{"/movies/1", "/movies/2"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		var total int64
		var seen bool
		for _, scope := range rm.ScopeMetrics {
			if scope.Scope.Name != HTTPMetricsMeterName {
				continue
			}
			for _, m := range scope.Metrics {
				if m.Name != "marena_http_requests_total" {
					continue
				}
				seen = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1, "ids must not create new series")
				route, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("route"))
				assert.Equal(t, "/movies/{id}", route.AsString())
				total = sum.DataPoints[0].Value
			}
		}
		assert.True(t, seen)
		assert.Equal(t, int64(2), total)
	})
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider passes through", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newMovieRouter(TracingMiddleware(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("names spans after the route", func(t *testing.T) {
		t.Parallel()

		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		defer func() { _ = tp.Shutdown(context.Background()) }()

		router := newMovieRouter(TracingMiddleware(tp))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/movies/42", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/movies", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 2)

		assert.Equal(t, "GET /movies/{id}", spans[0].Name())
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)

		assert.Equal(t, "POST /movies", spans[1].Name())
		assert.Equal(t, codes.Error, spans[1].Status().Code)
	})

	t.Run("unmatched route uses constant name", func(t *testing.T) {
		t.Parallel()

		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		defer func() { _ = tp.Shutdown(context.Background()) }()

		rec := httptest.NewRecorder()
		newMovieRouter(TracingMiddleware(tp)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown/path", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET "+unknownRoute, spans[0].Name())
	})
}
