package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", cfg.Server.Addr, err)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must not be negative")
	}
	if err := validateRateLimit(cfg.Server.RateLimit); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Models.Dir) == "" {
		return errors.New("models.dir must be set")
	}
	if cfg.Models.WatchDebounce < 0 || cfg.Models.RetireAfter < 0 {
		return errors.New("models durations must not be negative")
	}

	if cfg.Ledger.MaxEntries < 0 || cfg.Ledger.RecentLimit < 0 || cfg.Ledger.TrendDays < 0 {
		return errors.New("ledger limits must not be negative")
	}
	if _, err := cfg.Ledger.Location(); err != nil {
		return fmt.Errorf("ledger.timezone: %w", err)
	}

	if err := validateEventsConfig(cfg.Events); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateRateLimit(r RateLimitConfig) error {
	if !r.Enabled {
		return nil
	}
	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be positive, got %v", r.RequestsPerSecond)
	}
	if r.Burst <= 0 {
		return fmt.Errorf("server.rate_limit.burst must be positive, got %d", r.Burst)
	}
	return nil
}

func validateEventsConfig(e EventsConfig) error {
	switch strings.ToLower(strings.TrimSpace(e.PreviewMode)) {
	case "", "metadata", "redacted":
	default:
		return fmt.Errorf("events.preview_mode must be metadata or redacted, got %q", e.PreviewMode)
	}
	if e.QueueSize < 0 || e.Workers < 0 {
		return errors.New("events queue_size and workers must not be negative")
	}
	for i, s := range e.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case SinkFileJSONL:
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("events sink %d (file_jsonl) missing path", i)
			}
		case SinkWebhook:
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("events sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("events sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("events sink %d (webhook) url must be http or https", i)
			}
			if s.Timeout < 0 || s.Timeout > time.Minute {
				return fmt.Errorf("events sink %d (webhook) timeout must be within 0..1m", i)
			}
		case SinkRedisStream:
			if strings.TrimSpace(s.Addr) == "" {
				return fmt.Errorf("events sink %d (redis_stream) missing addr", i)
			}
			if _, _, err := net.SplitHostPort(s.Addr); err != nil {
				return fmt.Errorf("events sink %d (redis_stream) addr must be host:port", i)
			}
			if s.DB < 0 || s.MaxLen < 0 {
				return fmt.Errorf("events sink %d (redis_stream) db and max_len must not be negative", i)
			}
		default:
			return fmt.Errorf("events sink %d has unknown type %q", i, s.Type)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
