package brands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/components"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

// chartLookback is the number of actual days drawn before the forecast.
const chartLookback = 60

// View renders the brands tab.
func (m *Model) View() string {
	report := m.state.GetReport()
	if report == nil && m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle(report)}

	if report == nil || len(report.Growth) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.renderTable())
		if brand := report.Brand(m.selectedBrand()); brand != nil {
			m.detail.SetContent(m.renderDetail(report, brand))
			sections = append(sections, styles.BlurredBorderStyle.Width(m.cardWidth()).Render(m.detail.View()))
		}
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 60)
}

func (m *Model) renderTitle(report *models.Report) string {
	title := styles.TitleStyle.Render("Brands")

	count := 0
	if report != nil {
		count = len(report.Growth)
	}
	info := fmt.Sprintf("%d brands", count)
	if q := m.filter.Value(); q != "" {
		info = fmt.Sprintf("%d of %d brands matching %q", len(m.visible), count, q)
	}

	header := title
	if m.filtering || m.filter.Value() != "" {
		border := styles.BlurredBorderStyle
		if m.filtering {
			border = styles.FocusedBorderStyle
		}
		header = lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", border.Render(m.filter.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(info), "")
}

func (m *Model) renderTable() string {
	if len(m.visible) == 0 {
		return styles.CardStyle.Width(m.cardWidth()).Render(
			styles.HelpStyle.Render("No brand matches the filter"),
		)
	}
	return styles.CardStyle.Width(m.cardWidth()).Padding(0, 1).Render(m.table.View())
}

func (m *Model) renderEmptyState() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Forecastable Brands"),
		"",
		styles.HelpStyle.Render("Brands appear once they have a complete month of sales and a forecast."),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderDetail(report *models.Report, g *models.BrandGrowth) string {
	var rows []string

	trend := styles.GetTrendStyle(g.Trend).Render(g.Trend.Arrow())
	rows = append(rows,
		fmt.Sprintf("%s %s %s", trend, styles.CardTitleStyle.MarginBottom(0).Render(g.Brand), styles.HelpStyle.Render(g.Category)),
		fmt.Sprintf("%s %s → %s %s   %s %s",
			styles.MetricLabelStyle.Render(g.ReferenceMonth.Label()),
			components.FormatAmount(g.LastMonthActual),
			styles.MetricLabelStyle.Render(g.TargetMonth.Label()),
			components.FormatAmount(g.NextMonthPredicted),
			styles.GetGrowthStyle(g.AbsoluteGrowth).Render(components.FormatSigned(g.AbsoluteGrowth)),
			styles.GetGrowthStyle(g.AbsoluteGrowth).Render("("+components.FormatPct(g.GrowthPct)+")"),
		),
		styles.HelpStyle.Render(fmt.Sprintf("last actual %s · growth from %s · coverage %s",
			g.LastActualDate.Format("Jan 2, 2006"), g.SourceModel, g.Coverage)),
		"",
	)

	series := m.projectionSeries(report, g)
	rows = append(rows, m.renderProjections(report, g), "")
	rows = append(rows,
		components.RenderForecastChart(report.Actuals[g.Brand], series, chartLookback, max(m.detail.Width-12, 20), 8, "daily sales"),
		components.RenderLegend(components.ForecastLegend(series)),
		"",
	)

	if cmp := report.BrandComparison(g.Brand); cmp != nil {
		rows = append(rows, renderComparison(cmp), "")
	}

	if warnings := report.WarningsFor(g.Brand); len(warnings) > 0 {
		rows = append(rows, styles.SubTitleStyle.MarginBottom(0).Render("Warnings"))
		for _, w := range warnings {
			line := "  " + styles.FlagStyle.Render(string(w.Kind))
			if w.Model != "" {
				line += " [" + w.Model + "]"
			}
			if w.Detail != "" {
				line += " " + styles.HelpStyle.Render(w.Detail)
			}
			rows = append(rows, line)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// projectionSeries orders the brand's projections like the report's models.
func (m *Model) projectionSeries(report *models.Report, g *models.BrandGrowth) []components.ForecastSeries {
	var out []components.ForecastSeries
	seen := make(map[string]bool)
	for _, name := range report.Models {
		if p := g.Projection(name); p != nil {
			out = append(out, components.ForecastSeries{Model: name, Points: p.Series})
			seen[name] = true
		}
	}
	var rest []string
	for name := range g.Projections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, components.ForecastSeries{Model: name, Points: g.Projections[name].Series})
	}
	return out
}

func (m *Model) renderProjections(report *models.Report, g *models.BrandGrowth) string {
	rows := []string{styles.SubTitleStyle.MarginBottom(0).Render("Projections")}

	for _, s := range m.projectionSeries(report, g) {
		p := g.Projections[s.Model]
		name := lipgloss.NewStyle().Foreground(styles.ModelColor(s.Model)).Width(10).Render(s.Model)
		line := fmt.Sprintf("  %s %14s  %s → %s  %d days, %d in %s",
			name,
			components.FormatAmount(p.Value),
			p.HorizonStart.Format("Jan 2"),
			p.HorizonEnd.Format("Jan 2"),
			p.HorizonDays,
			p.DaysInTarget,
			g.TargetMonth.Label(),
		)
		var marks []string
		if s.Model == g.SourceModel {
			marks = append(marks, styles.InfoTextStyle.Render("★ used"))
		}
		if p.LowConfidence {
			marks = append(marks, styles.FlagStyle.Render("low confidence"))
		}
		if len(marks) > 0 {
			line += "  " + strings.Join(marks, " ")
		}
		rows = append(rows, line)
	}

	if len(rows) == 1 {
		rows = append(rows, styles.HelpStyle.Render("  No projection for this brand"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderComparison(cmp *models.ModelComparison) string {
	rows := []string{
		styles.SubTitleStyle.MarginBottom(0).Render("Model accuracy"),
		styles.HelpStyle.Render(fmt.Sprintf("  %-10s %12s %10s", "model", "RMSE", "MAPE")),
	}

	names := make([]string, 0, len(cmp.Metrics))
	for name := range cmp.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mr := cmp.Metrics[name]
		line := fmt.Sprintf("  %-10s %12.2f %9.2f%%", name, mr.RMSE, mr.MAPE)
		if name == cmp.BestModel {
			line = styles.SuccessTextStyle.Render(line + "  best")
		}
		rows = append(rows, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderFooter() string {
	var shortcuts []string
	if m.filtering {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " apply",
			styles.HelpKeyStyle.Render("Esc") + " clear",
		}
	} else {
		shortcuts = []string{
			styles.HelpKeyStyle.Render("j/k") + " select",
			styles.HelpKeyStyle.Render("/") + " filter",
			styles.HelpKeyStyle.Render("J/K") + " scroll detail",
			styles.HelpKeyStyle.Render("m") + " switch model",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
