// Package config resolves the server configuration.
//
// Values are layered: built-in defaults, then an optional .env file, then an
// optional YAML file, then TASKTRACKER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable holding the YAML config path.
const EnvConfigPath = "TASKTRACKER_CONFIG"

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host              string        `yaml:"host" env:"TASKTRACKER_HOST"`
	Port              int           `yaml:"port" env:"TASKTRACKER_PORT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"TASKTRACKER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"TASKTRACKER_SHUTDOWN_TIMEOUT"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logger.LoggingConfig with file and env bindings.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"TASKTRACKER_LOG_LEVEL"`
	Format     string `yaml:"format" env:"TASKTRACKER_LOG_FORMAT"`
	Output     string `yaml:"output" env:"TASKTRACKER_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"TASKTRACKER_LOG_FILE_PREFIX"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" env:"TASKTRACKER_CORS_ENABLED"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"TASKTRACKER_CORS_ALLOWED_ORIGINS"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" env:"TASKTRACKER_RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"TASKTRACKER_RATE_LIMIT_RPS"`
	Burst             int           `yaml:"burst" env:"TASKTRACKER_RATE_LIMIT_BURST"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" env:"TASKTRACKER_RATE_LIMIT_CLEANUP_INTERVAL"`
}

// AuditConfig controls the in-memory audit ring and its optional JSONL sink.
type AuditConfig struct {
	MaxEntries int    `yaml:"max_entries" env:"TASKTRACKER_AUDIT_MAX_ENTRIES"`
	Path       string `yaml:"path" env:"TASKTRACKER_AUDIT_PATH"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"TASKTRACKER_METRICS_ENABLED"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              3000,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		CORS: CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 50,
			Burst:             100,
			CleanupInterval:   time.Minute,
		},
		Audit: AuditConfig{
			MaxEntries: 300,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load resolves the configuration. path names an optional YAML file; when
// empty, TASKTRACKER_CONFIG is consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return errors.New("rate_limit.requests_per_second must be positive")
		}
		if c.RateLimit.Burst < 1 {
			return errors.New("rate_limit.burst must be at least 1")
		}
	}
	if c.RateLimit.CleanupInterval < 0 {
		return errors.New("rate_limit.cleanup_interval must not be negative")
	}
	if c.Audit.MaxEntries < 0 {
		return errors.New("audit.max_entries must not be negative")
	}
	return nil
}
