// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds catalog database configuration.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// SuggestRPS and SuggestBurst throttle the autocomplete endpoint per IP.
	SuggestRPS   float64
	SuggestBurst int
}

// MediaConfig holds media URL resolution configuration.
type MediaConfig struct {
	// BaseURL is prepended to stored image keys when building public URLs.
	BaseURL string
}

// RateLimitConfig holds the per-action engagement throttle windows.
// A visitor who performed an action on a subject stays throttled for that
// action's window before the same (subject, visitor, action) is allowed again.
type RateLimitConfig struct {
	ViewWindow     time.Duration
	StarWindow     time.Duration
	BookmarkWindow time.Duration
	// SweepInterval controls how often expired throttle entries are purged.
	SweepInterval time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := flag.String("db-path", "", "Path to the catalog SQLite database")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	mediaBaseURL := flag.String("media-base-url", "", "Base URL for resolved media keys")
	viewWindow := flag.String("view-window", "", "Throttle window for view actions (default: 1h)")
	starWindow := flag.String("star-window", "", "Throttle window for star actions (default: 24h)")
	bookmarkWindow := flag.String("bookmark-window", "", "Throttle window for bookmark actions (default: 24h)")
	sweepInterval := flag.String("sweep-interval", "", "Expired throttle entry sweep interval (default: 5m)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", "hydra.db"),
		},
		Server: ServerConfig{
			Port:         getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			SuggestRPS:   getFloatConfigValue("", "SUGGEST_RPS", 5),
			SuggestBurst: getIntConfigValue("", "SUGGEST_BURST", 10),
		},
		Media: MediaConfig{
			BaseURL: getConfigValue(*mediaBaseURL, "MEDIA_BASE_URL", ""),
		},
	}

	// Parse server timeouts.
	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	// Parse throttle windows.
	cfg.RateLimit.ViewWindow, err = parseDurationValue(*viewWindow, "RATELIMIT_VIEW_WINDOW", "1h")
	if err != nil {
		return nil, fmt.Errorf("invalid view window: %w", err)
	}
	cfg.RateLimit.StarWindow, err = parseDurationValue(*starWindow, "RATELIMIT_STAR_WINDOW", "24h")
	if err != nil {
		return nil, fmt.Errorf("invalid star window: %w", err)
	}
	cfg.RateLimit.BookmarkWindow, err = parseDurationValue(*bookmarkWindow, "RATELIMIT_BOOKMARK_WINDOW", "24h")
	if err != nil {
		return nil, fmt.Errorf("invalid bookmark window: %w", err)
	}
	cfg.RateLimit.SweepInterval, err = parseDurationValue(*sweepInterval, "RATELIMIT_SWEEP_INTERVAL", "5m")
	if err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	for _, w := range []struct {
		name string
		d    time.Duration
	}{
		{"view window", c.RateLimit.ViewWindow},
		{"star window", c.RateLimit.StarWindow},
		{"bookmark window", c.RateLimit.BookmarkWindow},
		{"sweep interval", c.RateLimit.SweepInterval},
	} {
		if w.d <= 0 {
			return fmt.Errorf("%s must be positive", w.name)
		}
	}

	return nil
}

// expandDatabasePath expands ~ and makes the path absolute.
func (c *Config) expandDatabasePath() error {
	path := c.Database.Path

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Database.Path = filepath.Clean(path)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves flag/env/default precedence and parses the result.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
