package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the web front-end
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Finance API configuration
	APIURL     string
	APITimeout time.Duration

	// Identity configuration
	SessionSecret      string
	SessionIdleTimeout time.Duration
	UsersConfigPath    string

	// Redis configuration (flash notifications). Empty URL keeps them in memory.
	RedisURL      string
	RedisPassword string

	// CORS
	AllowedOrigins []string
}

// Load reads an optional .env file and then loads configuration from
// environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		APIURL:             getEnv("API_URL", ""),
		APITimeout:         getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		UsersConfigPath:    getEnv("USERS_CONFIG_PATH", "config/users.yaml"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API_URL is required")
	}

	parsed, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid API_URL scheme %q: must be http or https", parsed.Scheme)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q: must be between 1 and 65535", c.Port)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration parses values like "10s" or "30m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
