package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Database: DatabaseConfig{Path: "/data/hydra.db"},
		RateLimit: RateLimitConfig{
			ViewWindow:     time.Hour,
			StarWindow:     24 * time.Hour,
			BookmarkWindow: 24 * time.Hour,
			SweepInterval:  5 * time.Minute,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_ThrottleWindows(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.StarWindow = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "star window")
}

func TestValidate_EmptyDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestExpandDatabasePath_TildeExpansion(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "~/hydra/catalog.db"}}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "hydra", "catalog.db"), cfg.Database.Path)
}

func TestExpandDatabasePath_AbsolutePath(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "/var/lib/hydra/catalog.db"}}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hydra/catalog.db", cfg.Database.Path)
}

func TestExpandDatabasePath_RelativePath(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "data/catalog.db"}}

	err := cfg.expandDatabasePath()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.Database.Path))
	assert.Contains(t, cfg.Database.Path, "data/catalog.db")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Flag value takes priority.
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	// Env var when flag is empty.
	os.Setenv("TEST_ENV_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_ENV_KEY")      //nolint:errcheck // Test cleanup

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	// Default when both are empty.
	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("90s", "UNSET_KEY", "15s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = parseDurationValue("", "UNSET_KEY", "15s")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	_, err = parseDurationValue("not-a-duration", "UNSET_KEY", "15s")
	assert.Error(t, err)
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
DATABASE_PATH=/test/catalog.db
# Comment line
QUOTED_VALUE="some value"
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	for _, key := range []string{"ENV", "LOG_LEVEL", "DATABASE_PATH", "QUOTED_VALUE"} {
		os.Unsetenv(key) //nolint:errcheck // Test setup
	}
	t.Cleanup(func() {
		for _, key := range []string{"ENV", "LOG_LEVEL", "DATABASE_PATH", "QUOTED_VALUE"} {
			os.Unsetenv(key) //nolint:errcheck // Test cleanup
		}
	})

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/catalog.db", os.Getenv("DATABASE_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
}

func TestLoadEnvFile_EnvVarTakesPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("PRESET_KEY=file-value\n"), 0o644)
	require.NoError(t, err)

	os.Setenv("PRESET_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("PRESET_KEY")      //nolint:errcheck // Test cleanup

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	assert.Equal(t, "env-value", os.Getenv("PRESET_KEY"))
}

func TestLoadEnvFile_MissingFile(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("NOT A VALID LINE\n"), 0o644)
	require.NoError(t, err)

	err = loadEnvFile(envFile)
	assert.Error(t, err)
}
