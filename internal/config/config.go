// Package config handles loading of application settings from the environment
// and of the endpoint list from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL      = errors.New("RENEWABLES_BASE_URL must not be empty")
	ErrMissingAPIKey       = errors.New("RENEWABLES_API_KEY environment variable not set")
	ErrMissingOutputDir    = errors.New("OUTPUT_DIR must not be empty")
	ErrInvalidMaxAttempts  = errors.New("RETRY_MAX_ATTEMPTS must be at least 1")
	ErrInvalidDelay        = errors.New("retry delays must be non-negative")
	ErrInvalidMultiplier   = errors.New("RETRY_BACKOFF_MULTIPLIER must be >= 1.0")
	ErrInvalidTimeout      = errors.New("HTTP_TIMEOUT must be positive")
	ErrInvalidWorkers      = errors.New("WORKERS must be at least 1")
	ErrInvalidBreakerLimit = errors.New("BREAKER_THRESHOLD must be non-negative")
)

// Config holds all configuration for the application,
// typically loaded from environment variables.
type Config struct {
	BaseURL   string
	APIKey    string
	OutputDir string

	RetryMaxAttempts int
	RetryInitial     time.Duration
	RetryMaxDelay    time.Duration
	RetryMultiplier  float64
	HTTPTimeout      time.Duration
	BreakerThreshold int

	Workers       int
	StrictSchema  bool
	EndpointsFile string

	SQLConnString   string
	SQLTable        string
	MongoConnString string
	MongoDatabase   string

	LogFile  string
	LogLevel string
}

// LoadConfig loads application settings from environment variables
// (which may be populated by the .env file in main.go).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:         strings.TrimRight(getenvDefault("RENEWABLES_BASE_URL", "http://localhost:8000"), "/"),
		APIKey:          os.Getenv("RENEWABLES_API_KEY"),
		OutputDir:       getenvDefault("OUTPUT_DIR", "./output"),
		EndpointsFile:   os.Getenv("ENDPOINTS_FILE"),
		SQLConnString:   os.Getenv("SQL_CONNECTION_STRING"),
		SQLTable:        getenvDefault("SQL_TABLE", "renewables"),
		MongoConnString: os.Getenv("MONGO_CONNECTION_STRING"),
		MongoDatabase:   getenvDefault("MONGO_DATABASE", "renewables"),
		LogFile:         os.Getenv("LOG_FILE"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RetryMaxAttempts, err = getenvInt("RETRY_MAX_ATTEMPTS", 7); err != nil {
		return nil, err
	}
	if cfg.RetryInitial, err = getenvDuration("RETRY_INITIAL_DELAY", 0); err != nil {
		return nil, err
	}
	if cfg.RetryMaxDelay, err = getenvDuration("RETRY_MAX_DELAY", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMultiplier, err = getenvFloat("RETRY_BACKOFF_MULTIPLIER", 2.0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.BreakerThreshold, err = getenvInt("BREAKER_THRESHOLD", 20); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getenvInt("WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.StrictSchema, err = getenvBool("STRICT_SCHEMA", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if c.RetryMaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.RetryInitial < 0 || c.RetryMaxDelay < 0 {
		return ErrInvalidDelay
	}
	if c.RetryMultiplier < 1.0 {
		return ErrInvalidMultiplier
	}
	if c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.BreakerThreshold < 0 {
		return ErrInvalidBreakerLimit
	}
	return nil
}

// String returns a representation safe to log: the API key is never printed.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{BaseURL: %s, OutputDir: %s, MaxAttempts: %d, Workers: %d, StrictSchema: %v, SQL: %v, Mongo: %v}",
		c.BaseURL,
		c.OutputDir,
		c.RetryMaxAttempts,
		c.Workers,
		c.StrictSchema,
		c.SQLConnString != "",
		c.MongoConnString != "",
	)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
