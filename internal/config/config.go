// Package config provides configuration loading and management for the Marena API server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marena/marena-api/internal/telemetry"
)

// StorageType selects the movie store backing the service
type StorageType string

const (
	// StorageMemory keeps movies in process memory
	StorageMemory StorageType = "memory"

	// StorageDatabase keeps movies in PostgreSQL
	StorageDatabase StorageType = "database"
)

// EnvPrefix is the prefix of environment variables read by the server
const EnvPrefix = "MARENA"

// PasswordEnvVar is read when no password file is configured
const PasswordEnvVar = "MARENA_DATABASE_PASSWORD"

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// EvalSymlinks also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Storage selects the movie store, "memory" when empty
	Storage StorageType `yaml:"storage,omitempty"`

	// Database is required when Storage is "database"
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Telemetry configures OpenTelemetry export
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`

	// PasswordFile holds the password, surrounding whitespace is trimmed.
	// Takes precedence over MARENA_DATABASE_PASSWORD.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	Database string `yaml:"database"`

	// SSLMode is one of disable, allow, prefer, require, verify-ca, verify-full.
	// Defaults to require.
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns caps the pool size
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the number of connections kept open when idle
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is a Go duration such as "1h" or "30m"
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

var validSSLModes = map[string]bool{
	"disable": true, "allow": true, "prefer": true,
	"require": true, "verify-ca": true, "verify-full": true,
}

// GetPassword returns the password from PasswordFile, or from the
// MARENA_DATABASE_PASSWORD environment variable when no file is set
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		data, err := os.ReadFile(filepath.Clean(d.PasswordFile))
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", PasswordEnvVar,
	)
}

// GetConnectionString builds a postgres:// URL. User and password are escaped.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

// GetConnMaxLifetime parses ConnMaxLifetime, returning 0 when unset
func (d *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	if d.ConnMaxLifetime == "" {
		return 0, nil
	}
	lifetime, err := time.ParseDuration(d.ConnMaxLifetime)
	if err != nil {
		return 0, fmt.Errorf("invalid connMaxLifetime %q: %w", d.ConnMaxLifetime, err)
	}
	return lifetime, nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorage returns the storage type, "memory" when unset
func (c *Config) GetStorage() StorageType {
	if c.Storage == "" {
		return StorageMemory
	}
	return c.Storage
}

// Validate checks storage, database and telemetry settings
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	switch c.GetStorage() {
	case StorageMemory:
	case StorageDatabase:
		if c.Database == nil {
			errs = append(errs, errors.New("database configuration is required when storage is \"database\""))
		} else if err := c.Database.validate(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage %q: must be %q or %q", c.Storage, StorageMemory, StorageDatabase))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	var errs []error

	if d.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if d.Port <= 0 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, errors.New("user is required"))
	}
	if d.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if d.SSLMode != "" && !validSSLModes[d.SSLMode] {
		errs = append(errs, fmt.Errorf("invalid sslMode %q", d.SSLMode))
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		errs = append(errs, errors.New("connection limits must not be negative"))
	}
	if d.MaxOpenConns > 0 && d.MaxIdleConns > d.MaxOpenConns {
		errs = append(errs, fmt.Errorf("maxIdleConns (%d) must not exceed maxOpenConns (%d)", d.MaxIdleConns, d.MaxOpenConns))
	}
	if _, err := d.GetConnMaxLifetime(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
