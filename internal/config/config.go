package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the environment-driven configuration of the embedded store.
type Config struct {
	// Database
	SQLiteDBPath string

	// Backup
	BackupDir string

	// Logging
	LogLevel slog.Level

	// Cache
	CategoryCacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		SQLiteDBPath:     getEnv("BUDGETBOOK_DB_PATH", "./data/budgetbook.db"),
		BackupDir:        getEnv("BUDGETBOOK_BACKUP_DIR", ""),
		LogLevel:         parseLevel(getEnv("BUDGETBOOK_LOG_LEVEL", "info")),
		CategoryCacheTTL: getEnvDuration("BUDGETBOOK_CATEGORY_CACHE_TTL", time.Minute),
	}
}

// Validate checks the configuration and reports every violation at once.
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.BackupDir != "" {
		if err := os.MkdirAll(c.BackupDir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create backup directory '%s': %v", c.BackupDir, err))
		}
	}

	if c.CategoryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid category cache TTL %v: must not be negative", c.CategoryCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
