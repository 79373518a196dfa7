// Package config reads fuelcast settings from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win. Load fails fast on missing
// or malformed values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ezoic/fuelcast/forecast"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development", "production" or "test"
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// DataConfig locates the dataset and selects how it is fitted
type DataConfig struct {
	Path        string // filesystem path, file:// URI or http(s):// URL
	FitMode     forecast.FitMode
	LoadTimeout time.Duration
}

// LoggingConfig holds log level and output format
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load reads the .env file, if any, and populates the Config struct
func Load() (*Config, error) {
	// A missing .env is fine; deployments usually inject variables directly.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	mode, err := forecast.ParseFitMode(getEnv("FIT_MODE", string(forecast.ModeShared)))
	if err != nil {
		return nil, fcErrors.Wrap(err, "FIT_MODE")
	}
	timeout, err := getEnvAsDuration("LOAD_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Data: DataConfig{
			Path:        strings.TrimSpace(getEnv("DATA_PATH", "")),
			FitMode:     mode,
			LoadTimeout: timeout,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Data.Path == "" {
		return fcErrors.New("DATA_PATH is required")
	}
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fcErrors.Newf("PORT must be a TCP port number, got %q", cfg.Server.Port)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fcErrors.Newf("LOG_FORMAT must be json or console, got %q", cfg.Logging.Format)
	}
	if cfg.Data.LoadTimeout < 0 {
		return fcErrors.New("LOAD_TIMEOUT must not be negative")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper to get env var as a duration ("45s", "2m")
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fcErrors.Wrapf(err, "%s", key)
	}
	return d, nil
}
