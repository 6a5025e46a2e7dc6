// Package config loads the rakshak YAML configuration, applying defaults,
// .env files and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/straja-ai/rakshak/internal/logging"
)

// Config holds rakshak configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Models    ModelsConfig    `yaml:"models"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Events    EventsConfig    `yaml:"events"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   logging.Config  `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string          `yaml:"addr" env:"RAKSHAK_ADDR"` // HTTP listen address, e.g. ":8000"
	Port            string          `yaml:"-" env:"PORT"`            // overrides the port of Addr
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" env:"RAKSHAK_MAX_BODY_BYTES"`
	CORSOrigins     []string        `yaml:"cors_origins"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Dashboard       bool            `yaml:"dashboard" env:"RAKSHAK_DASHBOARD"`
}

// RateLimitConfig is a token bucket shared by all clients.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" env:"RAKSHAK_RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RAKSHAK_RATE_LIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RAKSHAK_RATE_LIMIT_BURST"`
}

type ModelsConfig struct {
	Dir               string        `yaml:"dir" env:"RAKSHAK_MODELS_DIR"`
	SharedLibraryPath string        `yaml:"onnxruntime_library" env:"ONNXRUNTIME_SHARED_LIBRARY_PATH"`
	Watch             bool          `yaml:"watch" env:"RAKSHAK_MODELS_WATCH"`
	WatchDebounce     time.Duration `yaml:"watch_debounce"`
	// RetireAfter is how long a replaced model set stays open for
	// in-flight scans.
	RetireAfter time.Duration `yaml:"retire_after"`
}

type LedgerConfig struct {
	MaxEntries  int    `yaml:"max_entries" env:"RAKSHAK_LEDGER_MAX_ENTRIES"`
	RecentLimit int    `yaml:"recent_limit"`
	TrendDays   int    `yaml:"trend_days"`
	Timezone    string `yaml:"timezone" env:"RAKSHAK_TIMEZONE"` // IANA name, empty for local time
}

type EventsConfig struct {
	PreviewMode     string        `yaml:"preview_mode" env:"RAKSHAK_EVENTS_PREVIEW"` // metadata | redacted
	QueueSize       int           `yaml:"queue_size"`
	Workers         int           `yaml:"workers"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Sinks           []SinkConfig  `yaml:"sinks"`
}

// SinkConfig describes one scan event sink. Fields apply per type:
// file_jsonl uses Path, webhook uses URL, Headers and Timeout,
// redis_stream uses Addr, Password, DB, Stream and MaxLen.
type SinkConfig struct {
	Type        string            `yaml:"type"`
	Path        string            `yaml:"path"`
	URL         string            `yaml:"url"`
	Headers     map[string]string `yaml:"headers"`
	Timeout     time.Duration     `yaml:"timeout"`
	Addr        string            `yaml:"addr"`
	Password    string            `yaml:"password"`
	PasswordEnv string            `yaml:"password_env"`
	DB          int               `yaml:"db"`
	Stream      string            `yaml:"stream"`
	MaxLen      int64             `yaml:"max_len"`
}

// Sink types.
const (
	SinkFileJSONL   = "file_jsonl"
	SinkWebhook     = "webhook"
	SinkRedisStream = "redis_stream"
)

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"RAKSHAK_TELEMETRY_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Protocol    string `yaml:"protocol"` // grpc | http
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file, then applies .env files and
// environment overrides. A missing file (or empty path) yields the default
// config.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORSOrigins: []string{"*"},
			Dashboard:   true,
		},
		Logging: logging.Config{Level: "info"},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.Port != "" {
		cfg.Server.Addr = withPort(cfg.Server.Addr, cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.RateLimit.Enabled {
		if cfg.Server.RateLimit.RequestsPerSecond == 0 {
			cfg.Server.RateLimit.RequestsPerSecond = 20
		}
		if cfg.Server.RateLimit.Burst == 0 {
			cfg.Server.RateLimit.Burst = 40
		}
	}

	if cfg.Models.Dir == "" {
		cfg.Models.Dir = "models"
	}
	if cfg.Models.WatchDebounce == 0 {
		cfg.Models.WatchDebounce = 500 * time.Millisecond
	}
	if cfg.Models.RetireAfter == 0 {
		cfg.Models.RetireAfter = 30 * time.Second
	}

	if cfg.Ledger.MaxEntries == 0 {
		cfg.Ledger.MaxEntries = 100_000
	}
	if cfg.Ledger.RecentLimit == 0 {
		cfg.Ledger.RecentLimit = 20
	}
	if cfg.Ledger.TrendDays == 0 {
		cfg.Ledger.TrendDays = 7
	}

	if cfg.Events.PreviewMode == "" {
		cfg.Events.PreviewMode = "metadata"
	}
	if cfg.Events.QueueSize == 0 {
		cfg.Events.QueueSize = 1000
	}
	if cfg.Events.Workers == 0 {
		cfg.Events.Workers = 1
	}
	if cfg.Events.ShutdownTimeout == 0 {
		cfg.Events.ShutdownTimeout = 2 * time.Second
	}

	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "rakshak"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Location resolves the ledger timezone.
func (l LedgerConfig) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(l.Timezone)
}

// RedisPassword returns the inline password or the one named by
// PasswordEnv.
func (s SinkConfig) RedisPassword() string {
	if s.PasswordEnv != "" {
		if v := os.Getenv(s.PasswordEnv); v != "" {
			return v
		}
	}
	return s.Password
}
