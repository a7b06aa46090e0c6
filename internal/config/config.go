// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"radsync/internal/domain"
)

// UpstreamConfig holds the connection settings for the subscriber system.
type UpstreamConfig struct {
	URL     string        // base URL of the upstream API
	Token   string        // bearer token
	Secret  string        // legacy X-RADIUS-SECRET shared secret (optional)
	Timeout time.Duration // per-call timeout (default 30s)
}

// SyncConfig holds the engine's tunables.
type SyncConfig struct {
	BandwidthEncoding    domain.BandwidthEncoding // wispr (default) or mikrotik
	ActivationBatchLimit int                      // entries per activation scan (default 100)
	DeletionWindow       time.Duration            // trailing deletion window (default 10m)

	// Cron specs for the scheduled jobs. Empty disables a job.
	VoucherCron    string
	ActivationCron string
	DeletionCron   string
}

// Config holds the configuration for the sync service.
type Config struct {
	RadiusDBPath string // path to the FreeRADIUS SQLite file
	ListenAddr   string // HTTP listen address (default ":8080")
	APIToken     string // static bearer token accepted by the service
	JWTSecret    string // HS256 secret for JWT bearer auth (optional)
	LogLevel     string // log level: debug, info, warn, error (default "info")
	Env          string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	Upstream UpstreamConfig
	Sync     SyncConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SchedulerEnabled reports whether any periodic job is configured.
func (c *Config) SchedulerEnabled() bool {
	return c.Sync.VoucherCron != "" || c.Sync.ActivationCron != "" || c.Sync.DeletionCron != ""
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		RadiusDBPath: os.Getenv("RADIUS_DB_PATH"),
		ListenAddr:   os.Getenv("LISTEN_ADDR"),
		APIToken:     os.Getenv("API_TOKEN"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		Env:          os.Getenv("ENV"),
	}

	cfg.Upstream = UpstreamConfig{
		URL:    os.Getenv("UPSTREAM_API_URL"),
		Token:  os.Getenv("UPSTREAM_API_TOKEN"),
		Secret: os.Getenv("UPSTREAM_API_SECRET"),
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		cfg.Upstream.Timeout = d
	}

	encoding, err := domain.ParseBandwidthEncoding(os.Getenv("BANDWIDTH_ENCODING"))
	if err != nil {
		return nil, err
	}
	cfg.Sync = SyncConfig{
		BandwidthEncoding: encoding,
		VoucherCron:       os.Getenv("SCHEDULE_VOUCHERS"),
		ActivationCron:    os.Getenv("SCHEDULE_ACTIVATIONS"),
		DeletionCron:      os.Getenv("SCHEDULE_DELETIONS"),
	}
	if v := os.Getenv("ACTIVATION_BATCH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ACTIVATION_BATCH_LIMIT %q", v)
		}
		cfg.Sync.ActivationBatchLimit = n
	}
	if v := os.Getenv("DELETION_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DELETION_WINDOW %q: %w", v, err)
		}
		cfg.Sync.DeletionWindow = d
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults
	if cfg.RadiusDBPath == "" {
		cfg.RadiusDBPath = "radius.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 30 * time.Second
	}
	if cfg.Sync.ActivationBatchLimit == 0 {
		cfg.Sync.ActivationBatchLimit = 100
	}
	if cfg.Sync.DeletionWindow == 0 {
		cfg.Sync.DeletionWindow = 10 * time.Minute
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.APIToken == "" && cfg.JWTSecret == "" {
		cfg.Warnings = append(cfg.Warnings, "no API_TOKEN or JWT_SECRET set; every request will be rejected with 401")
	}
	if cfg.Upstream.URL == "" && cfg.SchedulerEnabled() {
		return nil, fmt.Errorf("UPSTREAM_API_URL is required when sync schedules are configured")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.APIToken == "" && cfg.JWTSecret == "" {
			return nil, fmt.Errorf("API_TOKEN or JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
