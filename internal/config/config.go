// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
)

// Config holds the application configuration.
type Config struct {
	DataDir      string   `validate:"required"`
	SalesPath    string   `validate:"required"`
	ForecastDir  string   `validate:"required"`
	Models       []string `validate:"min=1,dive,required,excludesall=/\\"`
	DatabasePath string   `validate:"required"`
	ExportDir    string   `validate:"required"`
	SettingsPath string

	PrimaryModel    string `validate:"required"`
	HorizonDays     int    `validate:"min=1,max=366"`
	TopN            int    `validate:"min=0"`
	MinCoverageDays int    `validate:"min=1,ltefield=HorizonDays"`
	LeaderboardSize int    `validate:"min=1"`

	ReloadDebounce    time.Duration `validate:"gte=0"`
	ReadRetries       int           `validate:"min=0,max=20"`
	ReadRetryInterval time.Duration `validate:"gt=0"`

	DesktopNotify    bool
	TelegramBotToken string `validate:"required_with=TelegramChatID"`
	TelegramChatID   string `validate:"required_with=TelegramBotToken"`

	HistoryKeepRuns int    `validate:"min=0"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	LogPath         string
}

// Default values
const (
	defaultDataDir           = "data"
	defaultReloadDebounce    = 500 * time.Millisecond
	defaultReadRetries       = 5
	defaultReadRetryInterval = 200 * time.Millisecond
	defaultHistoryKeepRuns   = 500
	defaultLogLevel          = "info"
)

var validate = validator.New()

// Load reads configuration from .env files, the optional settings file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getEnvString("DATA_DIR", defaultDataDir)
	cfg := &Config{
		DataDir:           dataDir,
		SalesPath:         getEnvString("SALES_PATH", filepath.Join(dataDir, "processed", "processed_sales.csv")),
		ForecastDir:       getEnvString("FORECAST_DIR", filepath.Join(dataDir, "forecast")),
		DatabasePath:      getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		ExportDir:         getEnvString("EXPORT_DIR", filepath.Join(dataDir, "reports")),
		SettingsPath:      getEnvString("SETTINGS_PATH", getDefaultSettingsPath()),
		ReloadDebounce:    getEnvDuration("RELOAD_DEBOUNCE", defaultReloadDebounce),
		ReadRetries:       getEnvInt("READ_RETRIES", defaultReadRetries),
		ReadRetryInterval: getEnvDuration("READ_RETRY_INTERVAL", defaultReadRetryInterval),
		DesktopNotify:     getEnvBool("DESKTOP_NOTIFY", true),
		TelegramBotToken:  getEnvString("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnvString("TELEGRAM_CHAT_ID", ""),
		HistoryKeepRuns:   getEnvInt("HISTORY_KEEP_RUNS", defaultHistoryKeepRuns),
		LogLevel:          strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		LogPath:           getEnvString("LOG_PATH", ""),
	}

	settings, err := LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	settings.apply(cfg)

	cfg.Models = getEnvList("FORECAST_MODELS", cfg.Models)
	cfg.PrimaryModel = getEnvString("PRIMARY_MODEL", cfg.PrimaryModel)
	cfg.HorizonDays = getEnvInt("HORIZON_DAYS", cfg.HorizonDays)
	cfg.TopN = getEnvInt("TOP_N", cfg.TopN)
	cfg.MinCoverageDays = getEnvInt("MIN_COVERAGE_DAYS", cfg.MinCoverageDays)
	cfg.LeaderboardSize = getEnvInt("LEADERBOARD_SIZE", cfg.LeaderboardSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Forecast returns the aggregation settings.
func (c *Config) Forecast() forecast.Config {
	return forecast.Config{
		HorizonDays:     c.HorizonDays,
		TopN:            c.TopN,
		PrimaryModel:    c.PrimaryModel,
		MinCoverageDays: c.MinCoverageDays,
		LeaderboardSize: c.LeaderboardSize,
	}
}

// Layout returns where the input tables live.
func (c *Config) Layout() tables.Layout {
	return tables.Layout{
		SalesPath:   c.SalesPath,
		ForecastDir: c.ForecastDir,
		Models:      append([]string(nil), c.Models...),
	}
}

// TelegramEnabled reports whether Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// defaultModels lists the forecast stages run upstream.
func defaultModels() []string {
	return []string{models.ModelProphet, models.ModelLSTM}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "brand-forecast-tui", ".env"))
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// configDir returns the per-user directory for the database and settings.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "brand-forecast-tui")
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	dir := configDir()
	if dir == "" {
		return "history.db"
	}
	return filepath.Join(dir, "history.db")
}

// getDefaultSettingsPath returns the default path for the YAML settings file.
func getDefaultSettingsPath() string {
	dir := configDir()
	if dir == "" {
		return "settings.yaml"
	}
	return filepath.Join(dir, "settings.yaml")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma separated list or returns the default.
func getEnvList(key string, defaultValue []string) []string {
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

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
