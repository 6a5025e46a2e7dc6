package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return Default()
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "missing server addr",
			mutate: func(c *Config) { c.Server.Addr = "" },
			want:   "server.addr",
		},
		{
			name:   "server addr without port",
			mutate: func(c *Config) { c.Server.Addr = "localhost" },
			want:   "host:port",
		},
		{
			name: "rate limit without rate",
			mutate: func(c *Config) {
				c.Server.RateLimit = RateLimitConfig{Enabled: true, Burst: 5}
			},
			want: "requests_per_second",
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.Server.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 5}
			},
			want: "burst",
		},
		{
			name:   "missing model dir",
			mutate: func(c *Config) { c.Models.Dir = " " },
			want:   "models.dir",
		},
		{
			name:   "negative ledger limit",
			mutate: func(c *Config) { c.Ledger.RecentLimit = -1 },
			want:   "ledger",
		},
		{
			name:   "unknown timezone",
			mutate: func(c *Config) { c.Ledger.Timezone = "Mars/Olympus_Mons" },
			want:   "ledger.timezone",
		},
		{
			name:   "bad preview mode",
			mutate: func(c *Config) { c.Events.PreviewMode = "full" },
			want:   "preview_mode",
		},
		{
			name:   "file sink without path",
			mutate: func(c *Config) { c.Events.Sinks = []SinkConfig{{Type: SinkFileJSONL}} },
			want:   "missing path",
		},
		{
			name:   "webhook with bad url",
			mutate: func(c *Config) { c.Events.Sinks = []SinkConfig{{Type: SinkWebhook, URL: "::://bad"}} },
			want:   "invalid url",
		},
		{
			name:   "webhook with ftp url",
			mutate: func(c *Config) { c.Events.Sinks = []SinkConfig{{Type: SinkWebhook, URL: "ftp://example.com/x"}} },
			want:   "http or https",
		},
		{
			name: "webhook timeout too long",
			mutate: func(c *Config) {
				c.Events.Sinks = []SinkConfig{{Type: SinkWebhook, URL: "https://example.com/hook", Timeout: time.Hour}}
			},
			want: "timeout",
		},
		{
			name:   "redis without addr",
			mutate: func(c *Config) { c.Events.Sinks = []SinkConfig{{Type: SinkRedisStream}} },
			want:   "missing addr",
		},
		{
			name:   "unknown sink",
			mutate: func(c *Config) { c.Events.Sinks = []SinkConfig{{Type: "kafka"}} },
			want:   "unknown type",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *Config) {
				c.Telemetry = TelemetryConfig{Enabled: true, Protocol: "grpc"}
			},
			want: "endpoint",
		},
		{
			name: "telemetry bad protocol",
			mutate: func(c *Config) {
				c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "localhost:4317", Protocol: "udp"}
			},
			want: "telemetry.protocol",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			} else if !contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidateOK(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}

	full := validConfig()
	full.Server.RateLimit = RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 20}
	full.Events.PreviewMode = "redacted"
	full.Events.Sinks = []SinkConfig{
		{Type: SinkFileJSONL, Path: "/var/log/rakshak/scans.jsonl"},
		{Type: SinkWebhook, URL: "https://hooks.example.com/scans", Timeout: 2 * time.Second},
		{Type: "REDIS_STREAM", Addr: "localhost:6379", Stream: "rakshak:scans"},
	}
	full.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "localhost:4318", Protocol: "http"}
	if err := Validate(full); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	if err := Validate(nil); err == nil {
		t.Fatal("expected nil config to fail")
	}
}

func contains(s, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}
