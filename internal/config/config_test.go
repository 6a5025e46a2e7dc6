package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Server.Dashboard)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "models", cfg.Models.Dir)
	assert.Equal(t, 20, cfg.Ledger.RecentLimit)
	assert.Equal(t, 7, cfg.Ledger.TrendDays)
	assert.Equal(t, "metadata", cfg.Events.PreviewMode)
	assert.Equal(t, "grpc", cfg.Telemetry.Protocol)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, Validate(cfg))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "rakshak.yaml", `
server:
  addr: "127.0.0.1:9090"
  read_timeout: 3s
  cors_origins: ["https://dashboard.example"]
  dashboard: false
  rate_limit:
    enabled: true
    requests_per_second: 5
models:
  dir: /srv/models
  watch: true
  watch_debounce: 250ms
events:
  preview_mode: redacted
  sinks:
    - type: redis_stream
      addr: localhost:6379
      stream: scans
      max_len: 10000
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"https://dashboard.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.Dashboard)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "/srv/models", cfg.Models.Dir)
	assert.True(t, cfg.Models.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Models.WatchDebounce)
	require.Len(t, cfg.Events.Sinks, 1)
	assert.Equal(t, int64(10000), cfg.Events.Sinks[0].MaxLen)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, Validate(cfg))
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "bad.yaml", "server: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAKSHAK_MODELS_DIR", "/opt/models")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RAKSHAK_RATE_LIMIT_ENABLED", "true")
	t.Setenv("RAKSHAK_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RAKSHAK_MAX_BODY_BYTES", "not-a-number")

	cfg, err := Load(writeFile(t, "rakshak.yaml", "models:\n  dir: /srv/models\n"))
	require.NoError(t, err)

	assert.Equal(t, "/opt/models", cfg.Models.Dir, "env wins over yaml")
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 2.5, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes, "unparseable values are ignored")
}

func TestEnvFileIsLoaded(t *testing.T) {
	const key = "RAKSHAK_LEDGER_MAX_ENTRIES"
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { os.Unsetenv(key) })
	t.Setenv("ENV_FILE", writeFile(t, "test.env", key+"=500\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Ledger.MaxEntries)
}

func TestSinkRedisPassword(t *testing.T) {
	t.Setenv("REDIS_SECRET", "from-env")
	assert.Equal(t, "from-env", SinkConfig{Password: "inline", PasswordEnv: "REDIS_SECRET"}.RedisPassword())
	assert.Equal(t, "inline", SinkConfig{Password: "inline", PasswordEnv: "UNSET_VAR_FOR_TEST"}.RedisPassword())
}

func TestWithPort(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9000", withPort("127.0.0.1:8000", "9000"))
	assert.Equal(t, ":9000", withPort("garbage", "9000"))
}
