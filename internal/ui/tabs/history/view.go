package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/components"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

// maxRunRows caps the run table.
const maxRunRows = 15

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.runs == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.stats.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderStats(),
		m.renderRuns(),
		m.renderBrand(),
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

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading report history..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, styles.TitleStyle.Render("History"), "  ", m.renderRange()),
		"",
		styles.HelpStyle.Render("No report runs recorded in this range."),
		styles.HelpStyle.Render("Every refresh of the report is stored and shows up here."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderRange() string {
	return lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", m.renderRange())

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Runs: %s → %s · loaded %s",
		m.stats.FirstRun.Format("Jan 2, 2006 15:04"),
		m.stats.LastRun.Format("Jan 2, 2006 15:04"),
		components.FormatAgo(m.lastRefresh),
	))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderStats() string {
	s := m.stats
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")

	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Summary")),
		statRow("Runs", fmt.Sprintf("%d", s.RunCount)),
		statRow("Avg brands", fmt.Sprintf("%.1f", s.AvgBrandCount)),
		statRow("Avg excluded", fmt.Sprintf("%.1f", s.AvgExcluded)),
		statRow("Peak forecast", components.FormatAmount(s.PeakNextRevenue)),
		statRow("Distinct leaders", fmt.Sprintf("%d", s.DistinctLeaders)),
	}
	if s.MostFrequentTop != "" {
		rows = append(rows, statRow("Most often first", fmt.Sprintf("%s (%d runs)", s.MostFrequentTop, s.MostFrequentHits)))
	}

	revenue := make([]float64, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		revenue = append(revenue, m.runs[i].NextMonthRevenue)
	}
	if len(revenue) > 1 {
		rows = append(rows, "", statRow("Forecast trend", components.RenderGrowthSparkline(revenue, m.cardWidth()-30)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func statRow(label, value string) string {
	return lipgloss.NewStyle().Width(18).Foreground(styles.TextMuted).Render(label+":") + " " + value
}

func (m *Model) renderRuns() string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Secondary).Render("◆")
	rows := []string{
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Recent runs")),
		styles.TableHeaderStyle.Render(fmt.Sprintf("%-16s %-9s %-9s %-20s %12s %6s %5s %5s",
			"generated", "month", "model", "fastest growing", "growth", "brands", "excl", "warn")),
	}

	for i, r := range m.runs {
		if i == maxRunRows {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("… %d older runs", len(m.runs)-maxRunRows)))
			break
		}
		fastest := r.FastestGrowing
		if fastest == "" {
			fastest = "-"
		}
		growth := styles.GetGrowthStyle(r.FastestGrowth).Render(fmt.Sprintf("%12s", components.FormatSigned(r.FastestGrowth)))
		rows = append(rows, fmt.Sprintf("%-16s %-9s %-9s %-20s %s %6d %5d %5d",
			r.GeneratedAt.Format("2006-01-02 15:04"),
			r.ReferenceMonth.String(),
			r.PrimaryModel,
			truncate(fastest, 20),
			growth,
			r.BrandCount,
			r.ExcludedCount,
			r.WarningCount,
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderBrand() string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")

	if m.brand == "" {
		return styles.CardStyle.Width(m.cardWidth()).Render(
			styles.HelpStyle.Render("Select a brand on the Brands tab to see its growth across runs"),
		)
	}

	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Growth of "+m.brand+" across runs"))}

	switch {
	case m.brandLoading && m.brandPoints == nil:
		rows = append(rows, styles.HelpStyle.Render("  Loading..."))
	case len(m.brandPoints) == 0:
		rows = append(rows, styles.HelpStyle.Render("  No stored runs include this brand"))
	default:
		growth := make([]float64, 0, len(m.brandPoints))
		for i := len(m.brandPoints) - 1; i >= 0; i-- {
			growth = append(growth, m.brandPoints[i].AbsoluteGrowth)
		}

		chart := components.RenderLineChart(growth, max(m.cardWidth()-16, 30), 6,
			fmt.Sprintf("absolute growth over %d runs", len(growth)))
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		rows = append(rows, "", renderPoint(m.brandPoints[0]))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderPoint(p models.BrandHistoryPoint) string {
	return fmt.Sprintf("  latest %s: %s %s → %s %s",
		p.ReferenceMonth.Label(),
		styles.GetTrendStyle(p.Trend).Render(p.Trend.Arrow()),
		components.FormatAmount(p.LastMonthActual),
		components.FormatAmount(p.NextMonthPredicted),
		styles.GetGrowthStyle(p.AbsoluteGrowth).Render(components.FormatPct(p.GrowthPct)),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
