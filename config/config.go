package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tradejournal/internal/adapters/logger" // Import the logger package for LogLevel
	"tradejournal/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string
	UserID string // scopes capital and custom field rows

	// Logging
	LogLevel  logger.LogLevel
	LogPretty bool

	// HTTP API
	HTTPPort           int
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration

	// Result auto-calculation
	AutoCalcDebounce time.Duration
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")
	cfg.UserID = strings.TrimSpace(getEnv("USER_ID", "local"))
	if cfg.UserID == "" {
		errs = append(errs, "USER_ID must not be blank")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogPretty = getEnvAsBool("LOG_PRETTY", false)

	// HTTP API
	cfg.HTTPPort, err = getEnvAsIntRequired("HTTP_PORT", 8080)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_PORT: %v", err))
	} else if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be between 1 and 65535")
	}

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		errs = append(errs, "CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	timeoutSeconds, err := getEnvAsIntRequired("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REQUEST_TIMEOUT_SECONDS: %v", err))
	} else if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	// Result auto-calculation
	debounceMs, err := getEnvAsIntRequired("AUTOCALC_DEBOUNCE_MS", 300)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid AUTOCALC_DEBOUNCE_MS: %v", err))
	} else if debounceMs < 0 {
		errs = append(errs, "AUTOCALC_DEBOUNCE_MS cannot be negative")
	}
	cfg.AutoCalcDebounce = time.Duration(debounceMs) * time.Millisecond

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
