// Package tui is the interactive terminal dashboard.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"StockLens/internal/dashboard"
	"StockLens/internal/dataset"
	"StockLens/internal/model"
	"StockLens/internal/render/term"
)

// ── styles ────────────────────────────────────────────────────────────────────

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#aaaaaa"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0b050"))
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#26a641"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05c5c"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	focusedStyle = boxStyle.BorderForeground(lipgloss.Color("#00ffff"))
)

const (
	sidebarWidth = 24
	tableHeight  = 8
)

// Options configures the dashboard.
type Options struct {
	Title        string
	DefaultChart model.ChartType
	MultiSymbol  bool
	ShowTable    bool
	Colors       term.Colors
}

type pane int

const (
	paneCategory pane = iota
	paneSymbol
	paneChartType
	paneTable
)

// ── model ─────────────────────────────────────────────────────────────────────

// Model is the bubbletea model for one dashboard session. Every widget change
// rebuilds the view from the shared dataset.
type Model struct {
	ds   *dataset.Dataset
	opts Options

	categories []string
	symbols    []string
	picked     map[string]bool

	catCursor  int
	symCursor  int
	typeCursor int
	focus      pane
	showTable  bool

	table table.Model
	view  dashboard.View
	err   error

	width  int
	height int
}

// New creates a Model showing the first category, its first symbol and the
// default chart type.
func New(ds *dataset.Dataset, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Stock Dashboard"
	}
	m := Model{
		ds:         ds,
		opts:       opts,
		categories: ds.Categories(),
		showTable:  opts.ShowTable,
		table: table.New(
			table.WithColumns(tableColumns()),
			table.WithHeight(tableHeight),
		),
	}
	for i, ct := range model.ChartTypes {
		if ct == opts.DefaultChart {
			m.typeCursor = i
		}
	}
	m.selectCategory(0)
	return m
}

// Run starts the dashboard on the alternate screen and blocks until the user
// quits.
func Run(ds *dataset.Dataset, opts Options) error {
	if _, err := tea.NewProgram(New(ds, opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Selection returns what is currently picked.
func (m Model) Selection() model.FilterSelection {
	sel := model.FilterSelection{ChartType: model.ChartTypes[m.typeCursor]}
	if m.catCursor < len(m.categories) {
		sel.Category = m.categories[m.catCursor]
	}
	for _, s := range m.symbols {
		if m.picked[s] {
			sel.Symbols = append(sel.Symbols, s)
		}
	}
	return sel
}

// Dashboard returns the last built dashboard view.
func (m Model) Dashboard() dashboard.View { return m.view }

// ── Init / Update / View ──────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(max(msg.Width-2, 20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		case "t":
			m.showTable = !m.showTable
			if !m.showTable && m.focus == paneTable {
				m.setFocus(paneCategory)
			}
			return m, nil
		case "1", "2", "3", "4", "5":
			i, _ := strconv.Atoi(msg.String())
			if i <= len(model.ChartTypes) {
				m.typeCursor = i - 1
				m.rebuild()
			}
			return m, nil
		}
		if m.focus == paneTable {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.handleListKey(msg.String())
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteByte('\n')

	chartW := max(m.width-sidebarWidth-6, 20)
	chartH := m.height - 4
	if m.showTable {
		chartH -= tableHeight + 3
	}
	chartH = max(chartH, 6)
	var chart string
	if m.err != nil {
		chart = warnStyle.Render(m.err.Error())
	} else {
		chart = term.Render(m.view.Chart, term.Options{Width: chartW, Height: chartH, Colors: m.opts.Colors})
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " ", chart))
	b.WriteByte('\n')

	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	if m.showTable {
		style := boxStyle
		if m.focus == paneTable {
			style = focusedStyle
		}
		b.WriteString(style.Render(m.table.View()))
		b.WriteByte('\n')
	}
	b.WriteString(footerStyle.Render(m.help()))
	return b.String()
}

// ── selection ────────────────────────────────────────────────────────────────

func (m *Model) handleListKey(key string) {
	delta := 0
	switch key {
	case "up", "k":
		delta = -1
	case "down", "j":
		delta = 1
	case " ", "enter":
		if m.focus == paneSymbol && m.opts.MultiSymbol && m.symCursor < len(m.symbols) {
			s := m.symbols[m.symCursor]
			m.picked[s] = !m.picked[s]
			m.rebuild()
		}
		return
	default:
		return
	}

	switch m.focus {
	case paneCategory:
		if i := clamp(m.catCursor+delta, len(m.categories)); i != m.catCursor {
			m.selectCategory(i)
		}
	case paneSymbol:
		i := clamp(m.symCursor+delta, len(m.symbols))
		if i == m.symCursor {
			return
		}
		m.symCursor = i
		if !m.opts.MultiSymbol {
			m.picked = map[string]bool{m.symbols[i]: true}
			m.rebuild()
		}
	case paneChartType:
		if i := clamp(m.typeCursor+delta, len(model.ChartTypes)); i != m.typeCursor {
			m.typeCursor = i
			m.rebuild()
		}
	}
}

// selectCategory switches category and resets the symbol choice to the first
// symbol in it.
func (m *Model) selectCategory(i int) {
	m.catCursor = i
	m.symCursor = 0
	m.symbols = nil
	m.picked = map[string]bool{}
	if i < len(m.categories) {
		m.symbols = m.ds.Symbols(m.categories[i])
	}
	if len(m.symbols) > 0 {
		m.picked[m.symbols[0]] = true
	}
	m.rebuild()
}

func (m *Model) rebuild() {
	v, err := dashboard.Build(m.ds, m.Selection())
	m.err = err
	if err != nil {
		return
	}
	m.view = v
	m.table.SetRows(tableRows(v.Rows))
	m.table.GotoTop()
}

func (m *Model) cycleFocus(step int) {
	n := 3
	if m.showTable {
		n = 4
	}
	m.setFocus(pane((int(m.focus) + step + n) % n))
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return max(n-1, 0)
	}
	return i
}

// ── sidebar ──────────────────────────────────────────────────────────────────

func (m Model) renderSidebar() string {
	cats := make([]string, len(m.categories))
	for i, c := range m.categories {
		cats[i] = item(i == m.catCursor && m.focus == paneCategory, "(•) ", "( ) ", i == m.catCursor, c)
	}

	on, off := "(•) ", "( ) "
	if m.opts.MultiSymbol {
		on, off = "[x] ", "[ ] "
	}
	syms := make([]string, len(m.symbols))
	for i, s := range m.symbols {
		syms[i] = item(i == m.symCursor && m.focus == paneSymbol, on, off, m.picked[s], s)
	}

	types := make([]string, len(model.ChartTypes))
	for i, ct := range model.ChartTypes {
		types[i] = item(i == m.typeCursor && m.focus == paneChartType, "(•) ", "( ) ", i == m.typeCursor, ct.Label())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.box(paneCategory, "Category", cats),
		m.box(paneSymbol, "Symbol", syms),
		m.box(paneChartType, "Chart Type", types),
	)
}

func (m Model) box(p pane, title string, items []string) string {
	style := boxStyle
	if m.focus == p {
		style = focusedStyle
	}
	body := titleStyle.Render(title)
	if len(items) > 0 {
		body += "\n" + strings.Join(items, "\n")
	}
	return style.Width(sidebarWidth).Render(body)
}

func item(cursor bool, on, off string, selected bool, label string) string {
	mark := off
	if selected {
		mark = on
	}
	if cursor {
		return cursorStyle.Render("> " + mark + label)
	}
	return "  " + mark + label
}

// ── status and table ─────────────────────────────────────────────────────────

func (m Model) renderStatus() string {
	if m.view.Warning != "" {
		return warnStyle.Render(m.view.Warning)
	}
	parts := make([]string, 0, len(m.view.Summaries))
	for _, s := range m.view.Summaries {
		style := upStyle
		if s.Change < 0 {
			style = downStyle
		}
		parts = append(parts, fmt.Sprintf("%s %.2f %s", s.Symbol, s.LastClose,
			style.Render(fmt.Sprintf("%+.2f (%+.2f%%)", s.Change, s.ChangePercent))))
	}
	return strings.Join(parts, "   ")
}

func (m Model) help() string {
	h := "[tab] focus  [↑/↓] move  [1-5] chart  [t] table  [q] quit"
	if m.opts.MultiSymbol {
		h = "[space] toggle symbol  " + h
	}
	return h
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Category", Width: 10},
		{Title: "Symbol", Width: 10},
		{Title: "Open", Width: 9},
		{Title: "High", Width: 9},
		{Title: "Low", Width: 9},
		{Title: "Close", Width: 9},
		{Title: "Volume", Width: 12},
	}
}

func tableRows(records []model.StockRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{
			r.Date.Format("2006-01-02"),
			r.Category,
			r.Symbol,
			strconv.FormatFloat(r.Open, 'f', 2, 64),
			strconv.FormatFloat(r.High, 'f', 2, 64),
			strconv.FormatFloat(r.Low, 'f', 2, 64),
			strconv.FormatFloat(r.Close, 'f', 2, 64),
			strconv.FormatFloat(r.Volume, 'f', -1, 64),
		}
	}
	return rows
}
