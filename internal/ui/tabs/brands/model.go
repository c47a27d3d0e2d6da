// Package brands provides the brand table with a per-brand forecast detail.
package brands

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/app"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/components"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the brands tab.
type keyMap struct {
	Filter     key.Binding
	Apply      key.Binding
	Clear      key.Binding
	DetailUp   key.Binding
	DetailDown key.Binding
	TableUp    key.Binding
	TableDown  key.Binding
}

// defaultKeyMap returns the default key bindings for the brands tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply filter"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		DetailUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "scroll detail up"),
		),
		DetailDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "scroll detail down"),
		),
		TableUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev brand"),
		),
		TableDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next brand"),
		),
	}
}

// Model represents the brands tab state.
type Model struct {
	state     *app.State
	cmds      *app.Commands
	table     table.Model
	filter    textinput.Model
	filtering bool
	detail    viewport.Model
	spinner   components.LoadingSpinner
	keys      keyMap
	visible   []string // Brands in table order after filtering
	width     int
	height    int
}

// New creates a new brands model.
func New(state *app.State, cmds *app.Commands) *Model {
	filter := textinput.New()
	filter.Placeholder = "brand or category"
	filter.Prompt = "/ "
	filter.CharLimit = 64
	filter.Width = 30

	t := table.New(
		table.WithColumns(columnsFor(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		cmds:    cmds,
		table:   t,
		filter:  filter,
		detail:  viewport.New(0, 0),
		spinner: components.NewSpinner("Loading brands..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the brands tab.
func (m *Model) Init() tea.Cmd {
	m.rebuildRows()
	return m.spinner.Init()
}

// CapturingInput reports whether the filter input owns the keyboard.
func (m *Model) CapturingInput() bool {
	return m.filtering
}

// Update handles messages for the brands tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ReportUpdatedMsg:
		m.rebuildRows()
		m.detail.GotoTop()
		return m, m.syncSelection()

	case app.SelectedBrandChangedMsg:
		if msg.Brand != m.selectedBrand() {
			m.moveCursorTo(msg.Brand)
			m.detail.GotoTop()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Clear):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.rebuildRows()
		return m.syncSelection()

	case key.Matches(msg, m.keys.Apply):
		m.filtering = false
		m.filter.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.rebuildRows()
	return tea.Batch(cmd, m.syncSelection())
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m.filter.Focus()

	case key.Matches(msg, m.keys.Clear):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.rebuildRows()
			return m.syncSelection()
		}
		return nil

	case key.Matches(msg, m.keys.DetailUp):
		m.detail.SetYOffset(m.detail.YOffset - 1)
		return nil

	case key.Matches(msg, m.keys.DetailDown):
		m.detail.SetYOffset(m.detail.YOffset + 1)
		return nil
	}

	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.detail.GotoTop()
	}
	return tea.Batch(cmd, m.syncSelection())
}

// rebuildRows refills the table from the current report and filter.
func (m *Model) rebuildRows() {
	report := m.state.GetReport()
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))

	m.visible = m.visible[:0]
	var rows []table.Row
	if report != nil {
		for _, g := range report.Growth {
			if !matches(g, query) {
				continue
			}
			m.visible = append(m.visible, g.Brand)
			rows = append(rows, brandRow(g))
		}
	}

	m.table.SetRows(rows)
	m.moveCursorTo(m.state.GetSelectedBrand())
}

func matches(g models.BrandGrowth, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.Brand), query) ||
		strings.Contains(strings.ToLower(g.Category), query)
}

func brandRow(g models.BrandGrowth) table.Row {
	return table.Row{
		g.Brand,
		g.Category,
		components.FormatAmount(g.LastMonthActual),
		components.FormatAmount(g.NextMonthPredicted),
		components.FormatSigned(g.AbsoluteGrowth),
		components.FormatPct(g.GrowthPct),
		g.Trend.Arrow(),
		rowFlags(g),
	}
}

func rowFlags(g models.BrandGrowth) string {
	var flags []string
	if g.ConfidenceFlag != "" {
		flags = append(flags, "LC")
	}
	if g.CoverageFlag != "" {
		flags = append(flags, "PC")
	}
	if g.HorizonMismatch {
		flags = append(flags, "HM")
	}
	if g.Undetermined {
		flags = append(flags, "NEW")
	}
	return strings.Join(flags, " ")
}

func (m *Model) moveCursorTo(brand string) {
	for i, b := range m.visible {
		if b == brand {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m *Model) selectedBrand() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return ""
	}
	return m.visible[i]
}

// syncSelection publishes the table cursor as the shared selected brand.
func (m *Model) syncSelection() tea.Cmd {
	brand := m.selectedBrand()
	if brand == "" || brand == m.state.GetSelectedBrand() {
		return nil
	}
	m.state.SetSelectedBrand(brand)
	if m.cmds == nil {
		return nil
	}
	return m.cmds.SelectBrand(brand)
}

func columnsFor(width int) []table.Column {
	brandWidth := width - 94
	if brandWidth < 14 {
		brandWidth = 14
	}
	if brandWidth > 30 {
		brandWidth = 30
	}
	return []table.Column{
		{Title: "Brand", Width: brandWidth},
		{Title: "Category", Width: 14},
		{Title: "Last month", Width: 14},
		{Title: "Next month", Width: 14},
		{Title: "Growth", Width: 14},
		{Title: "Growth %", Width: 9},
		{Title: "", Width: 2},
		{Title: "Flags", Width: 12},
	}
}

// SetSize sets the available size for the brands tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	tableHeight := max(height/3, 5)
	m.table.SetHeight(tableHeight)
	m.table.SetColumns(columnsFor(width))

	m.detail.Width = max(width-10, 40)
	m.detail.Height = max(height-tableHeight-12, 6)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.filtering {
		return []key.Binding{m.keys.Apply, m.keys.Clear}
	}
	return []key.Binding{
		m.keys.TableUp,
		m.keys.TableDown,
		m.keys.Filter,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.TableUp, m.keys.TableDown},
		{m.keys.Filter, m.keys.Apply, m.keys.Clear},
		{m.keys.DetailUp, m.keys.DetailDown},
	}
}
