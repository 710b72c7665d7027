package tui

import (
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jpalmerr/syncboard/table"
)

const (
	defaultTitle = "SyncBoard"

	// tickInterval is how often the footer ages are recomputed.
	tickInterval = time.Second

	colorGreen   = "#50fa7b"
	colorRed     = "#ff5555"
	colorPurple  = "#bd93f9"
	colorComment = "#6272a4"
	colorCyan    = "#8be9fd"
)

// TableMsg carries a freshly rendered table.
type TableMsg struct {
	Name string
	Rows []table.Row
	At   time.Time
}

// FailureMsg reports a poll cycle that left its table unchanged.
type FailureMsg struct {
	Poller string
	Err    error
	At     time.Time
}

type tickMsg time.Time

type styles struct {
	title, heading, meta, failure lipgloss.Style
	header, cell, border          lipgloss.Style

	classes map[string]lipgloss.Style
}

func defaultStyles() styles {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorPurple)),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorCyan)),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment)),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		header:  cell.Bold(true),
		cell:    cell,
		border:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment)),
		classes: map[string]lipgloss.Style{
			"online":  cell.Foreground(lipgloss.Color(colorGreen)),
			"offline": cell.Foreground(lipgloss.Color(colorRed)),
		},
	}
}

type tableView struct {
	layout  table.Layout
	rows    []table.Row
	updated time.Time
	seen    bool
	failure *FailureMsg
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	title  string
	views  []*tableView
	byName map[string]*tableView
	clock  clock.Clock
	keys   KeyMap
	help   help.Model
	styles styles

	quitting bool
}

// New creates a model showing the given tables in order. An empty title
// defaults to "SyncBoard".
func New(title string, clk clock.Clock, layouts ...table.Layout) *Model {
	if title == "" {
		title = defaultTitle
	}
	if clk == nil {
		clk = clock.New()
	}
	m := &Model{
		title:  title,
		byName: make(map[string]*tableView, len(layouts)),
		clock:  clk,
		keys:   DefaultKeyMap,
		help:   help.New(),
		styles: defaultStyles(),
	}
	for _, l := range layouts {
		v := &tableView{layout: l}
		m.views = append(m.views, v)
		m.byName[l.Name] = v
	}
	return m
}

// Init starts the footer clock.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case TableMsg:
		if v, ok := m.byName[msg.Name]; ok {
			v.rows = msg.Rows
			v.updated = msg.At
			v.seen = true
			v.failure = nil
		}
	case FailureMsg:
		if v, ok := m.byName[msg.Poller]; ok {
			f := msg
			v.failure = &f
		}
	case tickMsg:
		return m, m.tick()
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.title))
	b.WriteString("\n\n")

	now := m.clock.Now()
	for _, v := range m.views {
		b.WriteString(m.styles.heading.Render(v.layout.Heading))
		b.WriteString(" ")
		b.WriteString(m.styles.meta.Render(v.age(now)))
		b.WriteString("\n")
		b.WriteString(m.renderTable(v))
		b.WriteString("\n")
		if v.failure != nil {
			b.WriteString(m.styles.failure.Render("last poll failed: " + v.failure.Err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (v *tableView) age(now time.Time) string {
	if !v.seen {
		return "waiting for first poll"
	}
	return "updated " + humanize.RelTime(v.updated, now, "ago", "from now")
}

func (m *Model) renderTable(v *tableView) string {
	if v.seen && len(v.rows) == 0 {
		return m.styles.meta.Render("  no rows")
	}

	rows := v.rows
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(m.styles.border).
		Headers(v.layout.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return m.styles.header
			}
			if row < 0 || row >= len(rows) || col >= len(rows[row].Cells) {
				return m.styles.cell
			}
			if s, ok := m.styles.classes[rows[row].Cells[col].Class]; ok {
				return s
			}
			return m.styles.cell
		})
	for _, row := range rows {
		t.Row(row.Texts()...)
	}
	return t.String()
}
