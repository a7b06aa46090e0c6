package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radsync/internal/domain"
)

// clearEnv unsets every variable LoadFromEnv reads so host environments
// cannot leak into the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RADIUS_DB_PATH", "LISTEN_ADDR", "API_TOKEN", "JWT_SECRET",
		"LOG_LEVEL", "ENV",
		"UPSTREAM_API_URL", "UPSTREAM_API_TOKEN", "UPSTREAM_API_SECRET", "UPSTREAM_TIMEOUT",
		"BANDWIDTH_ENCODING", "ACTIVATION_BATCH_LIMIT", "DELETION_WINDOW",
		"SCHEDULE_VOUCHERS", "SCHEDULE_ACTIVATIONS", "SCHEDULE_DELETIONS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "radius.sqlite", cfg.RadiusDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, domain.EncodingWISPr, cfg.Sync.BandwidthEncoding)
	assert.Equal(t, 100, cfg.Sync.ActivationBatchLimit)
	assert.Equal(t, 10*time.Minute, cfg.Sync.DeletionWindow)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SchedulerEnabled())

	// Without credentials a warning is queued, not an error.
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RADIUS_DB_PATH", "/var/lib/radius/radius.db")
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("UPSTREAM_API_URL", "https://billing.example.com/api")
	t.Setenv("UPSTREAM_TIMEOUT", "10s")
	t.Setenv("BANDWIDTH_ENCODING", "mikrotik")
	t.Setenv("ACTIVATION_BATCH_LIMIT", "50")
	t.Setenv("DELETION_WINDOW", "30m")
	t.Setenv("SCHEDULE_VOUCHERS", "@every 5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/radius/radius.db", cfg.RadiusDBPath)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, domain.EncodingMikrotik, cfg.Sync.BandwidthEncoding)
	assert.Equal(t, 50, cfg.Sync.ActivationBatchLimit)
	assert.Equal(t, 30*time.Minute, cfg.Sync.DeletionWindow)
	assert.True(t, cfg.SchedulerEnabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_ScheduleRequiresUpstream(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULE_VOUCHERS", "@every 5m")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_API_URL")
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANDWIDTH_ENCODING", "cisco")
	_, err := LoadFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("ACTIVATION_BATCH_LIMIT", "-1")
	_, err = LoadFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	_, err = LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnv_ProductionChecks(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err, "production without credentials must fail")

	t.Setenv("API_TOKEN", "tok")
	_, err = LoadFromEnv()
	require.Error(t, err, "production with CORS wildcard must fail")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "WARN"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "anything"}).SlogLevel())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n" +
		"RADIUS_DB_PATH=/tmp/test.db\n" +
		"API_TOKEN=\"quoted-token\"\n" +
		"\n" +
		"not a kv line\n" +
		"LISTEN_ADDR=:9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Existing env vars win over .env entries.
	t.Setenv("LISTEN_ADDR", ":7070")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "/tmp/test.db", os.Getenv("RADIUS_DB_PATH"))
	assert.Equal(t, "quoted-token", os.Getenv("API_TOKEN"))
	assert.Equal(t, ":7070", os.Getenv("LISTEN_ADDR"))

	// A missing file is not an error.
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))
}
