package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server and the retention sweeper read from the
// environment.
type Config struct {
	Environment string

	// Database. Driver is "postgres" or "sqlite3"; DSN is the connection
	// string for Postgres or the file path for SQLite.
	DBDriver string
	DBDSN    string

	// Redis for the role-limit cache. Empty addr disables the cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RoleCacheTTL  time.Duration

	// LLM provider name prefixes accepted at operation creation.
	Providers []string

	// Retention: how long a hidden job survives before hard deletion.
	RetentionGrace time.Duration

	HTTPHost string
	HTTPPort string
}

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are fine; variables may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// FromEnv builds the configuration, failing fast on values that cannot be
// defaulted sensibly.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   getEnvOrDefault("SCRIBED_ENV", "development"),
		DBDriver:      getEnvOrDefault("DB_DRIVER", "sqlite3"),
		DBDSN:         getEnvOrDefault("DB_DSN", "data/scribed.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		HTTPHost:      getEnvOrDefault("HTTP_HOST", "0.0.0.0"),
		HTTPPort:      getEnvOrDefault("HTTP_PORT", "8080"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite3)", cfg.DBDriver)
	}
	if cfg.DBDriver == "postgres" && cfg.DBDSN == "data/scribed.db" {
		return nil, fmt.Errorf("DB_DSN must be set when DB_DRIVER is postgres")
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cacheTTLSeconds, err := intEnv("ROLE_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.RoleCacheTTL = time.Duration(cacheTTLSeconds) * time.Second

	graceDays, err := intEnv("RETENTION_GRACE_DAYS", 14)
	if err != nil {
		return nil, err
	}
	if graceDays < 1 {
		return nil, fmt.Errorf("RETENTION_GRACE_DAYS must be at least 1, got %d", graceDays)
	}
	cfg.RetentionGrace = time.Duration(graceDays) * 24 * time.Hour

	providers := getEnvOrDefault("LLM_PROVIDERS", "openai,anthropic,gemini")
	for _, p := range strings.Split(providers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Providers = append(cfg.Providers, p)
		}
	}
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("LLM_PROVIDERS must name at least one provider")
	}

	return cfg, nil
}

// InitializeConfig loads the .env file and builds the configuration. Main
// entry point for configuration loading.
func InitializeConfig() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return FromEnv()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
