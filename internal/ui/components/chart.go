// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// seriesColors maps series to asciigraph colors, kept in step with styles.ModelColor.
var seriesColors = map[string]asciigraph.AnsiColor{
	"actual":             asciigraph.White,
	models.ModelProphet:  asciigraph.DodgerBlue,
	models.ModelLSTM:     asciigraph.DarkOrange,
	"":                   asciigraph.Magenta,
}

// ForecastSeries is one model's daily projection for a chart.
type ForecastSeries struct {
	Model  string
	Points []models.ForecastPoint
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderForecastChart plots recent actual sales followed by each model's
// projection on a shared daily axis. Days without a value are left blank.
func RenderForecastChart(actual []models.DailySales, forecasts []ForecastSeries, lookback, width, height int, caption string) string {
	if lookback > 0 && len(actual) > lookback {
		actual = actual[len(actual)-lookback:]
	}

	days := make(map[time.Time]struct{})
	for _, a := range actual {
		days[dayKey(a.Date)] = struct{}{}
	}
	for _, f := range forecasts {
		for _, p := range f.Points {
			days[dayKey(p.Date)] = struct{}{}
		}
	}
	if len(days) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	axis := make([]time.Time, 0, len(days))
	for d := range days {
		axis = append(axis, d)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	index := make(map[time.Time]int, len(axis))
	for i, d := range axis {
		index[d] = i
	}

	blank := func() []float64 {
		s := make([]float64, len(axis))
		for i := range s {
			s[i] = math.NaN()
		}
		return s
	}

	var data [][]float64
	var colors []asciigraph.AnsiColor

	if len(actual) > 0 {
		s := blank()
		for _, a := range actual {
			s[index[dayKey(a.Date)]] = a.Sales
		}
		data = append(data, s)
		colors = append(colors, seriesColors["actual"])
	}
	for _, f := range forecasts {
		if len(f.Points) == 0 {
			continue
		}
		s := blank()
		for _, p := range f.Points {
			s[index[dayKey(p.Date)]] = p.Predicted
		}
		data = append(data, s)
		c, ok := seriesColors[f.Model]
		if !ok {
			c = seriesColors[""]
		}
		colors = append(colors, c)
	}
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

func dayKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RenderBarChart creates a horizontal bar chart. Negative values are drawn
// in the error color and scaled by magnitude.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if lipgloss.Width(l) > maxLabelLen {
			maxLabelLen = lipgloss.Width(l)
		}
	}

	barWidth := width - maxLabelLen - 16
	if barWidth < 10 {
		barWidth = 10
	}

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		paddedLabel := lipgloss.NewStyle().Width(maxLabelLen).Align(lipgloss.Right).Render(label)

		barLen := int(math.Abs(v) / maxVal * float64(barWidth))
		style := styles.GetGrowthStyle(v)
		bar := style.Render(strings.Repeat("█", barLen))
		valueStr := style.Render(" " + FormatSigned(v))

		lines = append(lines, paddedLabel+" │"+bar+valueStr)
	}

	return strings.Join(lines, "\n")
}

func sparkIndex(v, minVal, maxVal float64) int {
	span := maxVal - minVal
	if span == 0 {
		return len(sparkChars) / 2
	}
	n := int((v - minVal) / span * float64(len(sparkChars)-1))
	if n < 0 {
		return 0
	}
	if n >= len(sparkChars) {
		return len(sparkChars) - 1
	}
	return n
}

func sampled(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	step := float64(len(values)) / float64(width)
	out := make([]float64, 0, width)
	for i := 0; i < width; i++ {
		out = append(out, values[int(float64(i)*step)])
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// RenderSparkline creates a compact inline sparkline scaled to the
// range of the values.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	values = sampled(values, width)
	minVal, maxVal := bounds(values)

	var result strings.Builder
	for _, v := range values {
		result.WriteRune(sparkChars[sparkIndex(v, minVal, maxVal)])
	}
	return result.String()
}

// RenderGrowthSparkline renders a sparkline where each step is colored by
// whether it rose or fell from the previous value.
func RenderGrowthSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	values = sampled(values, width)
	minVal, maxVal := bounds(values)

	var result strings.Builder
	for i, v := range values {
		delta := 0.0
		if i > 0 {
			delta = v - values[i-1]
		}
		result.WriteString(styles.GetGrowthStyle(delta).Render(string(sparkChars[sparkIndex(v, minVal, maxVal)])))
	}
	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// ForecastLegend returns the legend matching RenderForecastChart.
func ForecastLegend(forecasts []ForecastSeries) []LegendItem {
	items := []LegendItem{{Label: "actual", Color: styles.Actual}}
	for _, f := range forecasts {
		items = append(items, LegendItem{Label: f.Model, Color: styles.ModelColor(f.Model)})
	}
	return items
}
