// Package helpers runs a Marena server in-process and talks to it over HTTP.
package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"

	marenaapp "github.com/marena/marena-api/internal/app"
	"github.com/marena/marena-api/internal/config"
	"github.com/marena/marena-api/internal/service"
)

// ServerTestHelper manages the server lifecycle for a test
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *marenaapp.MarenaApp
}

// NewServerTestHelper creates a helper for the server configured by configPath
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StartServer builds the app and serves it on a random local port
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := marenaapp.NewMarenaApp(s.ctx, marenaapp.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.app = app
	s.baseURL = "http://" + listener.Addr().String()

	go func() {
		if err := app.Serve(listener); err != nil {
			// The test fails once it cannot connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits until /readiness answers 200
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetHealth makes a GET request to /health
func (s *ServerTestHelper) GetHealth() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/health")
}

// ListMovies makes a GET request to /movies
func (s *ServerTestHelper) ListMovies() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/movies")
}

// GetMovie makes a GET request to /movies/{id}
func (s *ServerTestHelper) GetMovie(id int64) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/movies/%d", s.baseURL, id))
}

// CreateMovie makes a POST request to /movies
func (s *ServerTestHelper) CreateMovie(movie *service.Movie) (*http.Response, error) {
	return s.sendJSON(http.MethodPost, s.baseURL+"/movies", movie)
}

// UpdateMovie makes a PUT request to /movies/{id}
func (s *ServerTestHelper) UpdateMovie(id int64, movie *service.Movie) (*http.Response, error) {
	return s.sendJSON(http.MethodPut, fmt.Sprintf("%s/movies/%d", s.baseURL, id), movie)
}

// DeleteMovie makes a DELETE request to /movies/{id}
func (s *ServerTestHelper) DeleteMovie(id int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodDelete, fmt.Sprintf("%s/movies/%d", s.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	return s.httpClient.Do(req)
}

// PostRaw makes a POST request to /movies with an arbitrary body
func (s *ServerTestHelper) PostRaw(body string) (*http.Response, error) {
	return s.httpClient.Post(s.baseURL+"/movies", "application/json", bytes.NewBufferString(body))
}

func (s *ServerTestHelper) sendJSON(method, url string, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(s.ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

// DecodeBody reads and unmarshals a response body, closing it
func DecodeBody[T any](resp *http.Response) T {
	defer func() {
		_ = resp.Body.Close()
	}()

	var out T
	data, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(json.Unmarshal(data, &out)).To(gomega.Succeed(), "body: %s", string(data))
	return out
}
