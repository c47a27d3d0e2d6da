package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/brand-forecast-tui/internal/app"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func pct(v float64) *float64 { return &v }

func sampleRuns() ([]models.RunRecord, *models.RunStats) {
	base := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	apr := models.YearMonth{Year: 2024, Month: time.April}
	runs := []models.RunRecord{
		{ID: "r3", GeneratedAt: base.Add(2 * time.Hour), PrimaryModel: models.ModelLSTM, ReferenceMonth: apr,
			NextMonthRevenue: 2300, FastestGrowing: "Acme", FastestGrowth: 600, BrandCount: 3, ExcludedCount: 1, WarningCount: 2},
		{ID: "r2", GeneratedAt: base.Add(time.Hour), PrimaryModel: models.ModelProphet, ReferenceMonth: apr,
			NextMonthRevenue: 2100, FastestGrowing: "Acme", FastestGrowth: 500, BrandCount: 3},
		{ID: "r1", GeneratedAt: base, PrimaryModel: models.ModelProphet, ReferenceMonth: apr,
			NextMonthRevenue: 2000, FastestGrowing: "Bolt", FastestGrowth: 100, BrandCount: 2},
	}
	stats := &models.RunStats{
		TimeRange: models.TimeRange30Days, RunCount: 3,
		FirstRun: base, LastRun: base.Add(2 * time.Hour),
		AvgBrandCount: 2.7, PeakNextRevenue: 2300,
		DistinctLeaders: 2, MostFrequentTop: "Acme", MostFrequentHits: 2,
	}
	return runs, stats
}

func newTab() (*Model, *app.State) {
	state := app.NewState()
	state.SetLoading(app.ResourceInitial, false)
	m := New(state, app.NewCommands(nil))
	m.SetSize(140, 120)
	return m, state
}

func TestModel_InitWithoutManager(t *testing.T) {
	m := New(app.NewState(), app.NewCommands(nil))
	if m.Init() != nil {
		t.Error("Init should not load without a manager")
	}
	if m.loading {
		t.Error("nothing is loading without a manager")
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	m, _ := newTab()
	view := ansi.Strip(m.View())
	if !strings.Contains(view, "No report runs") || !strings.Contains(view, "30 Days") {
		t.Errorf("unexpected empty view %q", view)
	}
}

func TestModel_HistoryLoaded(t *testing.T) {
	m, _ := newTab()
	runs, stats := sampleRuns()

	m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange30Days, Runs: runs, Stats: stats})

	view := ansi.Strip(m.View())
	for _, want := range []string{
		"Recent runs",
		"2024-05-03 11:00",
		"2024-04",
		"lstm",
		"+600.00",
		"Acme (2 runs)",
		"2,300.00",
		"Forecast trend",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_IgnoresStaleRange(t *testing.T) {
	m, _ := newTab()
	runs, stats := sampleRuns()

	m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange7Days, Runs: runs, Stats: stats})
	if m.runs != nil {
		t.Error("results for another range must be ignored")
	}
}

func TestModel_HistoryError(t *testing.T) {
	m, _ := newTab()

	_, cmd := m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange30Days, Error: errors.New("db locked")})
	if cmd == nil {
		t.Fatal("error should raise a notification")
	}
	if n, ok := cmd().(app.AddNotificationMsg); !ok || n.Type != app.NotificationError {
		t.Errorf("unexpected message %#v", cmd())
	}
	if !strings.Contains(ansi.Strip(m.View()), "db locked") {
		t.Error("error should be shown")
	}

	runs, stats := sampleRuns()
	m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange30Days, Runs: runs, Stats: stats})
	if m.errorMsg != "" {
		t.Error("a successful load clears the error")
	}
}

func TestModel_ToggleRange(t *testing.T) {
	m, _ := newTab()
	runs, stats := sampleRuns()
	m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange30Days, Runs: runs, Stats: stats})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.timeRange != models.TimeRange90Days {
		t.Errorf("timeRange = %v, want 90 Days", m.timeRange)
	}
	if m.runs != nil || m.stats != nil {
		t.Error("switching range drops the previous runs")
	}
}

func TestModel_BrandHistory(t *testing.T) {
	m, state := newTab()
	runs, stats := sampleRuns()
	m.Update(app.HistoryLoadedMsg{TimeRange: models.TimeRange30Days, Runs: runs, Stats: stats})

	if !strings.Contains(ansi.Strip(m.View()), "Select a brand") {
		t.Error("without a selection the brand card should prompt")
	}

	state.SetSelectedBrand("Acme")
	m.Update(app.SelectedBrandChangedMsg{Brand: "Acme"})
	if m.brand != "Acme" {
		t.Fatalf("brand = %q, want Acme", m.brand)
	}

	apr := models.YearMonth{Year: 2024, Month: time.April}
	points := []models.BrandHistoryPoint{
		{RunID: "r3", ReferenceMonth: apr, LastMonthActual: 1000, NextMonthPredicted: 1600, AbsoluteGrowth: 600, GrowthPct: pct(60), Trend: models.TrendUp},
		{RunID: "r2", ReferenceMonth: apr, LastMonthActual: 1000, NextMonthPredicted: 1500, AbsoluteGrowth: 500, GrowthPct: pct(50), Trend: models.TrendUp},
	}

	m.Update(app.BrandHistoryLoadedMsg{Brand: "Bolt", Points: points})
	if m.brandPoints != nil {
		t.Error("points for another brand must be ignored")
	}

	m.Update(app.BrandHistoryLoadedMsg{Brand: "Acme", Points: points})
	view := ansi.Strip(m.View())
	for _, want := range []string{"Growth of Acme across runs", "absolute growth over 2 runs", "+60.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newTab()
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings missing")
	}
}
