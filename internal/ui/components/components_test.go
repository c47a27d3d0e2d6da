package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label = %s, want Loading", s.Label())
	}
	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should include the label")
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if len(strings.Split(view, "\n")) != 5 {
		t.Errorf("expected 5 lines, got %q", view)
	}
}

func TestRenderLoadingPanel(t *testing.T) {
	s := NewSpinner("Building report")
	view := RenderLoadingPanel(s, 10, 60, 10)
	if !strings.Contains(ansi.Strip(view), "Building report") {
		t.Error("loading panel should show the label")
	}
	if !strings.Contains(view, "▓") {
		t.Error("loading panel should show the shimmer")
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test"); !strings.Contains(s, "Test") {
		t.Errorf("chart should carry its caption: %q", s)
	}
	if s := RenderLineChart(nil, 20, 5, "Test"); !strings.Contains(s, "No data") {
		t.Error("empty chart should show placeholder")
	}
}

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestRenderForecastChart(t *testing.T) {
	actual := []models.DailySales{{Date: day(1), Sales: 10}, {Date: day(2), Sales: 12}, {Date: day(3), Sales: 11}}
	forecasts := []ForecastSeries{
		{Model: models.ModelProphet, Points: []models.ForecastPoint{{Date: day(4), Predicted: 13}, {Date: day(5), Predicted: 14}}},
		{Model: models.ModelLSTM, Points: []models.ForecastPoint{{Date: day(4), Predicted: 12}, {Date: day(5), Predicted: 11}}},
	}

	out := RenderForecastChart(actual, forecasts, 30, 40, 6, "Acme")
	if !strings.Contains(ansi.Strip(out), "Acme") {
		t.Errorf("chart should carry its caption: %q", out)
	}

	if out := RenderForecastChart(nil, nil, 30, 40, 6, "x"); !strings.Contains(out, "No data") {
		t.Error("empty chart should show placeholder")
	}

	// Only a forecast, no actuals.
	if out := RenderForecastChart(nil, forecasts[:1], 30, 40, 6, "solo"); !strings.Contains(ansi.Strip(out), "solo") {
		t.Errorf("forecast-only chart missing caption: %q", out)
	}
}

func TestForecastLegend(t *testing.T) {
	items := ForecastLegend([]ForecastSeries{{Model: models.ModelProphet}, {Model: models.ModelLSTM}})
	if len(items) != 3 || items[0].Label != "actual" || items[2].Label != models.ModelLSTM {
		t.Errorf("unexpected legend %+v", items)
	}
	legend := ansi.Strip(RenderLegend(items))
	for _, want := range []string{"actual", "prophet", "lstm"} {
		if !strings.Contains(legend, want) {
			t.Errorf("legend missing %q: %q", want, legend)
		}
	}
}

func TestRenderBarChart(t *testing.T) {
	if RenderBarChart(nil, nil, 40) != "" {
		t.Error("empty input should render nothing")
	}

	out := ansi.Strip(RenderBarChart([]float64{100, -50}, []string{"Acme", "Bolt"}, 40))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "+100.00") || !strings.Contains(lines[1], "-50.00") {
		t.Errorf("values not signed: %q", out)
	}
	full := strings.Count(lines[0], "█")
	half := strings.Count(lines[1], "█")
	if full == 0 || half == 0 || half >= full {
		t.Errorf("bars not scaled by magnitude: %d vs %d", full, half)
	}
}

func TestRenderSparkline(t *testing.T) {
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty input should render nothing")
	}

	got := RenderSparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("RenderSparkline = %q", got)
	}

	if n := len([]rune(RenderSparkline(make([]float64, 100), 10))); n != 10 {
		t.Errorf("expected 10 samples, got %d", n)
	}
}

func TestRenderGrowthSparkline(t *testing.T) {
	out := ansi.Strip(RenderGrowthSparkline([]float64{5, 3, 8}, 10))
	if len([]rune(out)) != 3 {
		t.Errorf("expected 3 glyphs, got %q", out)
	}
}

func TestRenderDivergingBar(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		left  int
		right int
	}{
		{"growth", 50, 0, 5},
		{"decline", -100, 10, 0},
		{"flat", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(RenderDivergingBar(tt.value, 100, 20))
			parts := strings.Split(out, "│")
			if len(parts) != 2 {
				t.Fatalf("expected a center mark: %q", out)
			}
			if got := strings.Count(parts[0], "█"); got != tt.left {
				t.Errorf("left = %d, want %d", got, tt.left)
			}
			if got := strings.Count(parts[1], "█"); got != tt.right {
				t.Errorf("right = %d, want %d", got, tt.right)
			}
		})
	}
}

func TestShareBar_View(t *testing.T) {
	bar := NewShareBar()
	out := ansi.Strip(bar.View(40, "Growing", 60))
	if !strings.Contains(out, "Growing") || !strings.Contains(out, "40%") {
		t.Errorf("unexpected share bar %q", out)
	}
	if !strings.Contains(ansi.Strip(bar.View(250, "x", 60)), "100%") {
		t.Error("share should be clamped to 100")
	}
}

func TestRenderGradientBar(t *testing.T) {
	out := ansi.Strip(RenderGradientBar(50, 10))
	if strings.Count(out, "█") != 5 || strings.Count(out, "░") != 5 {
		t.Errorf("unexpected gradient bar %q", out)
	}
	if lipgloss.Width(RenderGradientBar(150, 10)) != 10 {
		t.Error("gradient bar should keep its width")
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("start = %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("end = %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{0, 0, 0} {
		t.Errorf("invalid hex should fall back to black, got %v", got)
	}
}

func TestRenderLoadingBar(t *testing.T) {
	for _, frame := range []int{0, 30, 60, 90} {
		if w := lipgloss.Width(RenderLoadingBar(20, frame)); w != 20 {
			t.Errorf("frame %d: width = %d", frame, w)
		}
	}
}

func TestFormat(t *testing.T) {
	pct := 12.345
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"amount", FormatAmount(1234567.891), "1,234,567.89"},
		{"signed positive", FormatSigned(1500), "+1,500.00"},
		{"signed negative", FormatSigned(-20.5), "-20.50"},
		{"signed zero", FormatSigned(0), "0.00"},
		{"pct", FormatPct(&pct), "+12.3%"},
		{"pct nil", FormatPct(nil), "n/a"},
		{"compact", FormatCompact(12345), "12.3k"},
		{"ago zero", FormatAgo(time.Time{}), "never"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if got := FormatAgo(time.Now().Add(-2 * time.Hour)); !strings.Contains(got, "ago") {
		t.Errorf("FormatAgo = %q", got)
	}
}
