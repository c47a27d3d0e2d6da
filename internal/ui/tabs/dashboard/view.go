package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/components"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

// maxListed caps exclusion and warning lines shown on the overview.
const maxListed = 8

// View renders the dashboard component.
func (m *Model) View() string {
	report := m.state.GetReport()

	if report == nil && m.state.IsInitialLoading() {
		return components.RenderLoadingPanel(m.spinner, m.animationFrame, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle(report))

	switch {
	case report == nil && m.state.GetError() != nil:
		sections = append(sections, m.renderError())
	case report.IsEmpty():
		sections = append(sections, m.renderEmpty())
	default:
		sections = append(sections,
			m.renderSummary(report),
			m.renderTopGrowth(report),
			m.renderLeaders(report),
			m.renderIssues(report),
		)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderTitle(report *models.Report) string {
	title := styles.TitleStyle.Render("Brand Forecast")

	subtitle := "Next-month growth from daily sales and model forecasts"
	if report != nil {
		subtitle = fmt.Sprintf("%s → %s · primary model %s · updated %s",
			report.Summary.ReferenceMonth.Label(),
			report.Summary.NextMonth.Label(),
			report.PrimaryModel,
			components.FormatAgo(m.state.GetLastUpdated()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderError() string {
	rows := []string{
		styles.ErrorTextStyle.Render("Report could not be built"),
		"",
		m.state.GetError().Error(),
		"",
		styles.HelpStyle.Render("Fix the input tables and press r to retry."),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderEmpty() string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		fmt.Sprintf("%s %s", emptyIcon, styles.HelpStyle.Render("No brands in the sales table")),
		"",
		styles.InfoTextStyle.Render("╰─▶ Drop the processed sales and forecast tables into the data directory"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSummary(report *models.Report) string {
	s := report.Summary
	width := m.cardWidth()
	cardW := max((width-4)/4-2, 18)

	delta := s.NextMonthRevenue - s.ThisMonthRevenue
	nextCaption := styles.GetGrowthStyle(delta).Render(components.FormatSigned(delta))

	fastest := "-"
	fastestCaption := styles.HelpStyle.Render("no growing brand")
	if s.FastestGrowing != "" {
		fastest = s.FastestGrowing
		fastestCaption = styles.GetGrowthStyle(s.FastestGrowth).Render(components.FormatSigned(s.FastestGrowth))
	}

	trending := "-"
	trendingCaption := styles.HelpStyle.Render("no popularity data")
	if s.MostTrending != "" {
		trending = s.MostTrending
		trendingCaption = styles.HelpStyle.Render(fmt.Sprintf("score %.2f", s.MostTrendingScore))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Revenue "+s.ReferenceMonth.Label(), components.FormatCompact(s.ThisMonthRevenue),
			styles.HelpStyle.Render(components.FormatAmount(s.ThisMonthRevenue)), cardW),
		metricCard("Forecast "+s.NextMonth.Label(), components.FormatCompact(s.NextMonthRevenue), nextCaption, cardW),
		metricCard("Fastest growing", fastest, fastestCaption, cardW),
		metricCard("Most trending", trending, trendingCaption, cardW),
	)

	share := 0.0
	if s.BrandCount > 0 {
		share = float64(s.PositiveGrowthCount) / float64(s.BrandCount) * 100
	}
	growing := m.shareBar.View(share, "Growing brands", min(width, 80))
	counts := styles.HelpStyle.Render(fmt.Sprintf("  %d of %d brands projected to grow", s.PositiveGrowthCount, s.BrandCount))

	return lipgloss.JoinVertical(lipgloss.Left, cards, growing, counts, "")
}

func metricCard(label, value, caption string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.MetricLabelStyle.Render(label),
		styles.MetricValueStyle.Render(value),
		caption,
	)
	return styles.BlurredBorderStyle.Width(width).MarginRight(1).Render(content)
}

func (m *Model) renderTopGrowth(report *models.Report) string {
	list := report.TopGrowth
	if m.ranking == rankByPercent {
		list = report.TopGrowthPct
	}

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{
		fmt.Sprintf("%s %s %s", titleIcon,
			styles.CardTitleStyle.Render(fmt.Sprintf("Top %d by %s", len(list), m.ranking)),
			styles.HelpStyle.Render("[s] toggle"),
		),
	}

	if len(list) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No brand has a projected growth yet"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	values := make([]float64, len(list))
	labels := make([]string, len(list))
	for i, g := range list {
		labels[i] = g.Brand
		values[i] = g.AbsoluteGrowth
		if m.ranking == rankByPercent && g.GrowthPct != nil {
			values[i] = *g.GrowthPct
		}
	}
	rows = append(rows, components.RenderBarChart(values, labels, m.cardWidth()-6), "")

	for i, g := range list {
		rows = append(rows, renderGrowthLine(i+1, g))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderGrowthLine(rank int, g models.BrandGrowth) string {
	trend := styles.GetTrendStyle(g.Trend).Render(g.Trend.Arrow())
	line := fmt.Sprintf("%2d. %s %-20s %-12s %12s → %-12s %s",
		rank,
		trend,
		truncate(g.Brand, 20),
		truncate(g.Category, 12),
		components.FormatAmount(g.LastMonthActual),
		components.FormatAmount(g.NextMonthPredicted),
		styles.GetGrowthStyle(g.AbsoluteGrowth).Render(components.FormatPct(g.GrowthPct)),
	)
	if flags := growthFlags(g); flags != "" {
		line += " " + styles.FlagStyle.Render(flags)
	}
	return line
}

func growthFlags(g models.BrandGrowth) string {
	var flags []string
	if g.ConfidenceFlag != "" {
		flags = append(flags, "low confidence")
	}
	if g.CoverageFlag != "" {
		flags = append(flags, "partial coverage")
	}
	if g.HorizonMismatch {
		flags = append(flags, "horizon mismatch")
	}
	if g.Undetermined {
		flags = append(flags, "new brand")
	}
	return strings.Join(flags, ", ")
}

func (m *Model) renderLeaders(report *models.Report) string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◆")
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Category leaders "+report.Summary.ReferenceMonth.Label()))}

	categories := report.Leaders.Categories()
	if len(categories) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No category data"))
	}

	for _, cat := range categories {
		entries := report.Leaders[cat]
		rows = append(rows, styles.SubTitleStyle.MarginBottom(0).Render(cat))
		for i, e := range entries {
			rows = append(rows, fmt.Sprintf("  %d. %-22s %s", i+1, truncate(e.Brand, 22), components.FormatAmount(e.Sales)))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderIssues(report *models.Report) string {
	if len(report.Exclusions) == 0 && len(report.Warnings) == 0 {
		return ""
	}

	titleIcon := styles.WarningTextStyle.Render("⚠")
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(
		fmt.Sprintf("Data quality · %d excluded · %d warnings", len(report.Exclusions), len(report.Warnings))))}

	for i, e := range report.Exclusions {
		if i == maxListed {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more excluded", len(report.Exclusions)-maxListed)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %s %s", styles.ExcludedStyle.Render(e.Brand), styles.HelpStyle.Render(e.Reason.Description())))
	}

	for i, w := range report.Warnings {
		if i == maxListed {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more warnings", len(report.Warnings)-maxListed)))
			break
		}
		model := ""
		if w.Model != "" {
			model = " [" + w.Model + "]"
		}
		rows = append(rows, fmt.Sprintf("  %s%s %s", w.Brand, model, styles.FlagStyle.Render(string(w.Kind))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
