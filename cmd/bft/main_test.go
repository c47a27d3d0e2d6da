package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/config"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
)

func writeFile(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func daily(start time.Time, days int, row func(d string) string) []string {
	var lines []string
	for i := 0; i < days; i++ {
		lines = append(lines, row(start.AddDate(0, 0, i).Format("2006-01-02")))
	}
	return lines
}

// setupData writes April actuals and May forecasts for one brand and points
// the configuration at them.
func setupData(t *testing.T, salesHeader string) string {
	t.Helper()
	dir := t.TempDir()
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	may := april.AddDate(0, 1, 0)

	writeFile(t, filepath.Join(dir, "processed", "processed_sales.csv"),
		append([]string{salesHeader}, daily(april, 30, func(d string) string {
			return d + ",Acme,Snacks,100"
		})...))
	for model, perDay := range map[string]int{"prophet": 110, "lstm": 90} {
		writeFile(t, filepath.Join(dir, "forecast", model+"_forecast_results.csv"),
			append([]string{"Date,Brand,Predicted_Sales"}, daily(may, 30, func(d string) string {
				return fmt.Sprintf("%s,Acme,%d", d, perDay)
			})...))
	}

	t.Setenv("DATA_DIR", dir)
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db", "history.db"))
	t.Setenv("SETTINGS_PATH", filepath.Join(dir, "settings.yaml"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestRunReport(t *testing.T) {
	setupData(t, "Date,Brand,Category,Total_Sales")

	var stdout, stderr bytes.Buffer
	code := runReport(nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"Reference month: 2024-04",
		"primary model: prophet",
		"Fastest growing: Acme (300.00)",
		"absolute_growth,1,Acme,300.00,10.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunReport_PrimaryFlagAndExport(t *testing.T) {
	dir := setupData(t, "Date,Brand,Category,Total_Sales")
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := runReport([]string{"--primary", "lstm", "--out", outDir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Acme,-300.00,-10.00") {
		t.Errorf("lstm growth missing:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, tables.RankingsFile)); err != nil {
		t.Errorf("rankings were not exported: %v", err)
	}
}

func TestRunReport_SchemaError(t *testing.T) {
	setupData(t, "Date,Brand,Total_Sales")

	var stdout, stderr bytes.Buffer
	if code := runReport(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Schema error") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunReport_BadFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"negative top", []string{"--top", "-5"}},
		{"non-numeric top", []string{"--top", "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := runReport(tt.args, &stdout, &stderr); code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
			if stdout.Len() != 0 {
				t.Errorf("nothing should be printed to stdout, got %q", stdout.String())
			}
		})
	}
}

func TestLogPath(t *testing.T) {
	cfg := &config.Config{DatabasePath: filepath.Join("var", "history.db")}
	if got, want := logPath(cfg), filepath.Join("var", "bft.log"); got != want {
		t.Errorf("logPath() = %q, want %q", got, want)
	}
	cfg.LogPath = "custom.log"
	if got := logPath(cfg); got != "custom.log" {
		t.Errorf("logPath() = %q, want custom.log", got)
	}
}
