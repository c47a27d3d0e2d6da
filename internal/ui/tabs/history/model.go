// Package history provides the history tab for browsing persisted report runs.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/brand-forecast-tui/internal/app"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Reload      key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Reload: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "reload history"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	cmds     *app.Commands
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	timeRange    models.TimeRange
	runs         []models.RunRecord
	stats        *models.RunStats
	brand        string
	brandPoints  []models.BrandHistoryPoint
	loading      bool
	brandLoading bool
	lastRefresh  time.Time
	errorMsg     string
}

// New creates a new history model.
func New(state *app.State, cmds *app.Commands) *Model {
	return &Model{
		state:     state,
		cmds:      cmds,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange30Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// reload requests the run list and the selected brand's history.
func (m *Model) reload() tea.Cmd {
	if m.cmds == nil {
		return nil
	}
	var cmds []tea.Cmd
	if cmd := m.cmds.LoadHistory(m.timeRange); cmd != nil {
		m.loading = true
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.reloadBrand())
	return tea.Batch(cmds...)
}

func (m *Model) reloadBrand() tea.Cmd {
	m.brand = m.state.GetSelectedBrand()
	if m.cmds == nil {
		return nil
	}
	cmd := m.cmds.LoadBrandHistory(m.brand)
	if cmd == nil {
		m.brandPoints = nil
		return nil
	}
	m.brandLoading = true
	return cmd
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.HistoryLoadedMsg:
		if msg.TimeRange != m.timeRange {
			break
		}
		m.loading = false
		if msg.Error != nil {
			m.errorMsg = msg.Error.Error()
			cmds = append(cmds, func() tea.Msg {
				return app.AddNotificationMsg{
					Type:     app.NotificationError,
					Message:  fmt.Sprintf("History error: %s", msg.Error),
					Duration: app.LongNotificationDuration,
				}
			})
			break
		}
		m.runs = msg.Runs
		m.stats = msg.Stats
		m.errorMsg = ""
		m.lastRefresh = time.Now()

	case app.BrandHistoryLoadedMsg:
		if msg.Brand != m.brand {
			break
		}
		m.brandLoading = false
		if msg.Error == nil {
			m.brandPoints = msg.Points
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory {
			cmds = append(cmds, m.reload())
		}

	case app.ReportUpdatedMsg:
		// A refresh persists a new run.
		cmds = append(cmds, m.reload())

	case app.SelectedBrandChangedMsg:
		if msg.Brand != m.brand {
			cmds = append(cmds, m.reloadBrand())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.runs = nil
		m.stats = nil
		return m.reload()

	case key.Matches(msg, m.keys.Reload):
		return m.reload()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Reload,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Reload},
		{m.keys.Up, m.keys.Down},
	}
}
