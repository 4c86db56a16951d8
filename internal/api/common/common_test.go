package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteErrorResponse(rr, "movie not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "movie not found", body.Error)
}

func TestParseIDParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantID     int64
		wantErrMsg string
	}{
		{name: "valid id", path: "/movies/42", wantID: 42},
		{name: "large id", path: "/movies/9223372036854775807", wantID: 9223372036854775807},
		{name: "not a number", path: "/movies/abc", wantErrMsg: "id must be an integer"},
		{name: "overflow", path: "/movies/9223372036854775808", wantErrMsg: "id must be an integer"},
		{name: "zero", path: "/movies/0", wantErrMsg: "id must be positive"},
		{name: "negative", path: "/movies/-3", wantErrMsg: "id must be positive"},
		{name: "decimal", path: "/movies/1.5", wantErrMsg: "id must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotID int64
			var gotErr error
			r := chi.NewRouter()
			r.Get("/movies/{id}", func(_ http.ResponseWriter, req *http.Request) {
				gotID, gotErr = ParseIDParam(req, "id")
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.wantErrMsg != "" {
				require.Error(t, gotErr)
				assert.Contains(t, gotErr.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name       string
		body       string
		wantName   string
		wantErrMsg string
	}{
		{name: "valid", body: `{"name":"Movie 1"}`, wantName: "Movie 1"},
		{name: "empty", body: ``, wantErrMsg: "request body is empty"},
		{name: "malformed", body: `{"name":`, wantErrMsg: "invalid request body"},
		{name: "unknown field", body: `{"name":"x","rating":5}`, wantErrMsg: "unknown field"},
		{name: "wrong type", body: `{"name":5}`, wantErrMsg: "invalid request body"},
		{name: "trailing document", body: `{"name":"a"}{"name":"b"}`, wantErrMsg: "single JSON object"},
		{
			name:       "too large",
			body:       `{"name":"` + strings.Repeat("x", MaxRequestBodySize) + `"}`,
			wantErrMsg: "must not exceed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/movies", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dst)

			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, dst.Name)
		})
	}
}
