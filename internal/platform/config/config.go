package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Rate backends.
const (
	RateBackendFile     = "file"
	RateBackendPostgres = "postgres"
	RateBackendSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Rate persistence
	RateBackend    string
	RateCacheDir   string
	SQLitePath     string
	DatabaseURL    string
	MigrationsPath string

	// External rate vendor; an empty URL disables periodic refresh.
	RateProviderURL     string
	RateProviderBase    string
	RateRefreshInterval time.Duration

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("RATE_BACKEND", RateBackendFile)
	viper.SetDefault("RATE_CACHE_DIR", "./data/rates")
	viper.SetDefault("SQLITE_PATH", "./data/rates.db")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("RATE_PROVIDER_URL", "")
	viper.SetDefault("RATE_PROVIDER_BASE", "USD")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "6h")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Environment variables override .env values, which override the defaults above.
	viper.AutomaticEnv()

	cfg := &Config{
		Port:             viper.GetString("PORT"),
		IsProduction:     viper.GetBool("IS_PRODUCTION"),
		RateBackend:      strings.ToLower(strings.TrimSpace(viper.GetString("RATE_BACKEND"))),
		RateCacheDir:     viper.GetString("RATE_CACHE_DIR"),
		SQLitePath:       viper.GetString("SQLITE_PATH"),
		DatabaseURL:      viper.GetString("PGSQL_URL"),
		MigrationsPath:   viper.GetString("MIGRATIONS_PATH"),
		RateProviderURL:  viper.GetString("RATE_PROVIDER_URL"),
		RateProviderBase: strings.ToUpper(viper.GetString("RATE_PROVIDER_BASE")),
		RateLimit:        viper.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT environment variable not set, using default", slog.String("port", cfg.Port))
	}

	intervalStr := viper.GetString("RATE_REFRESH_INTERVAL")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid RATE_REFRESH_INTERVAL '%s': %v", apperrors.ErrInvalidConfiguration, intervalStr, err)
	}
	cfg.RateRefreshInterval = interval

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.RateBackend != RateBackendPostgres && cfg.DatabaseURL != "" {
		slog.Warn("PGSQL_URL is set but not used", slog.String("rate_backend", cfg.RateBackend))
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.RateBackend {
	case RateBackendFile:
		if c.RateCacheDir == "" {
			return fmt.Errorf("%w: RATE_CACHE_DIR is required for the file backend", apperrors.ErrInvalidConfiguration)
		}
	case RateBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite backend", apperrors.ErrInvalidConfiguration)
		}
	case RateBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: PGSQL_URL is required for the postgres backend", apperrors.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown RATE_BACKEND '%s'", apperrors.ErrInvalidConfiguration, c.RateBackend)
	}
	if c.RateRefreshInterval <= 0 {
		return fmt.Errorf("%w: RATE_REFRESH_INTERVAL must be positive", apperrors.ErrInvalidConfiguration)
	}
	if len(c.RateProviderBase) != 3 {
		return fmt.Errorf("%w: RATE_PROVIDER_BASE must be a 3-letter currency code", apperrors.ErrInvalidConfiguration)
	}
	return nil
}
