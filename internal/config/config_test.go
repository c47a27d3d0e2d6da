package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvIntAndBool(t *testing.T) {
	t.Setenv("TEST_INT", " 42 ")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_BAD_BOOL", "maybe")

	if got := getEnvInt("TEST_INT", 1); got != 42 {
		t.Errorf("getEnvInt() = %d, want 42", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvInt() = %d, want default 1", got)
	}
	if got := getEnvBool("TEST_BOOL", true); got {
		t.Error("getEnvBool() = true, want false")
	}
	if got := getEnvBool("TEST_BAD_BOOL", true); !got {
		t.Error("getEnvBool() = false, want default true")
	}
}

func TestGetEnvList(t *testing.T) {
	def := []string{"prophet"}

	tests := []struct {
		name   string
		envVal string
		want   []string
	}{
		{"Unset", "", def},
		{"Single", "lstm", []string{"lstm"}},
		{"TrimsAndSkipsEmpty", " prophet , ,lstm ", []string{"prophet", "lstm"}},
		{"OnlySeparators", " , ", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIST", tt.envVal)
			got := getEnvList("TEST_LIST", def)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("getEnvList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	if got, want := getDefaultDatabasePath(), filepath.Join(home, ".config", "brand-forecast-tui", "history.db"); got != want {
		t.Errorf("getDefaultDatabasePath() = %q, want %q", got, want)
	}
	if got, want := getDefaultSettingsPath(), filepath.Join(home, ".config", "brand-forecast-tui", "settings.yaml"); got != want {
		t.Errorf("getDefaultSettingsPath() = %q, want %q", got, want)
	}
}

// isolate points every path variable into a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db", "history.db"))
	t.Setenv("SETTINGS_PATH", filepath.Join(dir, "settings.yaml"))
	for _, key := range []string{
		"SALES_PATH", "FORECAST_DIR", "EXPORT_DIR", "FORECAST_MODELS", "PRIMARY_MODEL",
		"HORIZON_DAYS", "TOP_N", "MIN_COVERAGE_DAYS", "LEADERBOARD_SIZE", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID", "LOG_LEVEL", "READ_RETRIES", "READ_RETRY_INTERVAL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if want := filepath.Join(dir, "data", "processed", "processed_sales.csv"); cfg.SalesPath != want {
		t.Errorf("SalesPath = %q, want %q", cfg.SalesPath, want)
	}
	if want := filepath.Join(dir, "data", "forecast"); cfg.ForecastDir != want {
		t.Errorf("ForecastDir = %q, want %q", cfg.ForecastDir, want)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != models.ModelProphet || cfg.Models[1] != models.ModelLSTM {
		t.Errorf("Models = %v", cfg.Models)
	}
	fc := cfg.Forecast()
	if fc.HorizonDays != 30 || fc.TopN != 10 || fc.MinCoverageDays != 15 || fc.LeaderboardSize != 3 {
		t.Errorf("unexpected forecast defaults %+v", fc)
	}
	if fc.PrimaryModel != models.ModelProphet {
		t.Errorf("PrimaryModel = %q, want prophet", fc.PrimaryModel)
	}
	if cfg.TelegramEnabled() {
		t.Error("Telegram should be disabled without credentials")
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}

	layout := cfg.Layout()
	if layout.SalesPath != cfg.SalesPath || len(layout.Models) != 2 {
		t.Errorf("unexpected layout %+v", layout)
	}
}

func TestLoad_SettingsFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	settings := "models: [prophet, lstm, arima]\nprimary_model: lstm\nhorizon_days: 28\ntop_n: 0\nleaderboard_size: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(settings), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("HORIZON_DAYS", "31")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(cfg.Models) != 3 || cfg.Models[2] != "arima" {
		t.Errorf("Models = %v", cfg.Models)
	}
	if cfg.PrimaryModel != models.ModelLSTM {
		t.Errorf("PrimaryModel = %q, want lstm", cfg.PrimaryModel)
	}
	if cfg.HorizonDays != 31 {
		t.Errorf("HorizonDays = %d, env should win over settings", cfg.HorizonDays)
	}
	if cfg.TopN != 0 {
		t.Errorf("TopN = %d, explicit zero in settings should be kept", cfg.TopN)
	}
	if cfg.LeaderboardSize != 5 || cfg.MinCoverageDays != 15 {
		t.Errorf("unexpected leaderboard=%d coverage=%d", cfg.LeaderboardSize, cfg.MinCoverageDays)
	}
}

func TestLoad_InvalidSettingsFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("models: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed settings file")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"ZeroHorizon", "HORIZON_DAYS", "0"},
		{"CoverageAboveHorizon", "MIN_COVERAGE_DAYS", "45"},
		{"NegativeTopN", "TOP_N", "-1"},
		{"BadLogLevel", "LOG_LEVEL", "verbose"},
		{"TokenWithoutChat", "TELEGRAM_BOT_TOKEN", "123:abc"},
		{"ModelWithSlash", "FORECAST_MODELS", "../prophet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected validation error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings() failed: %v", err)
	}
	if s.TopN != nil || len(s.Models) != 0 {
		t.Errorf("expected empty settings, got %+v", s)
	}

	if s, err := LoadSettings(""); err != nil || s == nil {
		t.Errorf("LoadSettings(\"\") = %v, %v", s, err)
	}
}
