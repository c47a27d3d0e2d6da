package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/ui/components"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
	"github.com/j-veylop/brand-forecast-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderInputsCard(),
		m.renderForecastCard(),
		m.renderOutputsCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) card(title string, rows ...string) string {
	content := append([]string{styles.CardTitleStyle.Render(title)}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, content...),
	)
}

func (m *Model) renderInputsCard() string {
	if m.config == nil {
		return m.card("Inputs", styles.HelpStyle.Render("Configuration not loaded"))
	}
	c := m.config
	return m.card("Inputs",
		m.renderConfigRow("Sales table", c.SalesPath),
		m.renderConfigRow("Forecast dir", c.ForecastDir),
		m.renderConfigRow("Models", strings.Join(c.Models, ", ")),
		m.renderConfigRow("Reload debounce", c.ReloadDebounce.String()),
		m.renderConfigRow("Read retries", fmt.Sprintf("%d every %s", c.ReadRetries, c.ReadRetryInterval)),
	)
}

func (m *Model) renderForecastCard() string {
	if m.config == nil {
		return ""
	}
	c := m.config

	primary := c.PrimaryModel
	if r := m.state.GetReport(); r != nil && r.PrimaryModel != "" {
		primary = r.PrimaryModel
	}

	topN := fmt.Sprintf("%d", c.TopN)
	if c.TopN == 0 {
		topN = "all"
	}

	return m.card("Forecast",
		m.renderConfigRow("Primary model", primary),
		m.renderConfigRow("Horizon", fmt.Sprintf("%d days", c.HorizonDays)),
		m.renderConfigRow("Min coverage", fmt.Sprintf("%d days", c.MinCoverageDays)),
		m.renderConfigRow("Top N", topN),
		m.renderConfigRow("Leaderboard", fmt.Sprintf("%d per category", c.LeaderboardSize)),
	)
}

func (m *Model) renderOutputsCard() string {
	if m.config == nil {
		return ""
	}
	c := m.config

	telegram := "off"
	if c.TelegramEnabled() {
		telegram = "chat " + c.TelegramChatID
	}
	desktop := "off"
	if c.DesktopNotify {
		desktop = "on"
	}

	return m.card("Outputs",
		m.renderConfigRow("Database", c.DatabasePath),
		m.renderConfigRow("History kept", fmt.Sprintf("%d runs", c.HistoryKeepRuns)),
		m.renderConfigRow("Export dir", c.ExportDir),
		m.renderConfigRow("Settings", c.SettingsPath),
		m.renderConfigRow("Desktop alerts", desktop),
		m.renderConfigRow("Telegram", telegram),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	}

	if r := m.state.GetReport(); r != nil {
		rows = append(rows,
			fmt.Sprintf("Last report: %s · %s brands · updated %s",
				styles.InfoTextStyle.Render(r.RunID),
				styles.InfoTextStyle.Render(fmt.Sprintf("%d", len(r.Growth))),
				components.FormatAgo(m.state.GetLastUpdated()),
			),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("No report yet"))
	}

	return m.card("About "+version.Name, rows...)
}
