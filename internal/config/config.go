// Package config loads the sync server settings from the environment and the
// golfsync client settings through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the sync server.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	// DBURL selects postgres; empty runs on in-memory repositories.
	DBURL              string
	DBBinaryParameters bool
	CacheEnabled       bool
	CacheTTL           time.Duration

	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	InternalJobToken   string

	HandicapJobMaxWorkers int

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// UseMemoryStore reports whether the server runs on in-process repositories.
func (c Config) UseMemoryStore() bool {
	return strings.TrimSpace(c.DBURL) == ""
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; variables already set win. Every malformed
// variable is reported, not just the first.
func Load() (Config, error) {
	_ = godotenv.Load()

	var env envReader
	appEnv := strings.ToLower(env.str("APP_ENV", EnvDev))
	switch appEnv {
	case EnvDev, EnvStage, EnvProd:
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", appEnv, EnvDev, EnvStage, EnvProd)
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    env.str("APP_SERVICE_NAME", "golf-league-api"),
		ServiceVersion: env.str("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       env.str("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    env.duration("APP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   env.duration("APP_WRITE_TIMEOUT", 15*time.Second),
		LogLevel:       parseLogLevel(env.str("APP_LOG_LEVEL", "info")),

		DBURL:              env.str("DB_URL", ""),
		DBBinaryParameters: env.boolean("DB_BINARY_PARAMETERS", true),
		CacheEnabled:       env.boolean("CACHE_ENABLED", true),
		CacheTTL:           env.duration("CACHE_TTL", time.Minute),

		CORSAllowedOrigins: splitCSV(env.str("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:     env.boolean("SWAGGER_ENABLED", appEnv != EnvProd),
		InternalJobToken:   env.str("INTERNAL_JOB_TOKEN", ""),

		HandicapJobMaxWorkers: env.integer("HANDICAP_JOB_MAX_WORKERS", 4),

		PprofEnabled:               env.boolean("PPROF_ENABLED", false),
		PprofAddr:                  env.str("PPROF_ADDR", ":6060"),
		UptraceEnabled:             env.boolean("UPTRACE_ENABLED", false),
		UptraceDSN:                 env.str("UPTRACE_DSN", parseUptraceDSNFromOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))),
		PyroscopeEnabled:           env.boolean("PYROSCOPE_ENABLED", false),
		PyroscopeServerAddress:     env.str("PYROSCOPE_SERVER_ADDRESS", ""),
		PyroscopeAuthToken:         env.str("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     env.str("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: env.str("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        env.duration("PYROSCOPE_UPLOAD_RATE", 15*time.Second),
	}
	cfg.PyroscopeAppName = env.str("PYROSCOPE_APP_NAME", cfg.ServiceName)

	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(!c.UptraceEnabled || c.UptraceDSN != "", "UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	check(!c.PprofEnabled || c.PprofAddr != "", "PPROF_ADDR is required when PPROF_ENABLED=true")
	check(!c.PyroscopeEnabled || c.PyroscopeServerAddress != "", "PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	check(!c.PyroscopeEnabled || c.PyroscopeAppName != "", "PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	check(c.PyroscopeUploadRate > 0, "PYROSCOPE_UPLOAD_RATE must be > 0")
	check(c.HandicapJobMaxWorkers >= 1 && c.HandicapJobMaxWorkers <= 32, "HANDICAP_JOB_MAX_WORKERS must be between 1 and 32")
	check(len(c.CORSAllowedOrigins) > 0, "CORS_ALLOWED_ORIGINS cannot be empty")
	check(c.AppEnv != EnvProd || c.InternalJobToken != "", "INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	check(c.CacheTTL > 0, "CACHE_TTL must be > 0")

	return errors.Join(errs...)
}

// envReader reads trimmed variables, treating blank as unset, and collects
// parse errors.
type envReader struct {
	errs []error
}

func (e *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) boolean(key string, fallback bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("parse %s: %w", key, err))
	}
	return v
}

func (e *envReader) integer(key string, fallback int) int {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("parse %s: %w", key, err))
	}
	return v
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("parse %s: %w", key, err))
	}
	return v
}

func parseLogLevel(v string) logging.Level {
	level, err := logging.ParseLevel(v)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseUptraceDSNFromOTLPHeaders picks uptrace-dsn out of a standard
// OTEL_EXPORTER_OTLP_HEADERS value.
func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), `"'`)
		}
	}
	return ""
}
