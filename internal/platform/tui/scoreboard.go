package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/roster"
	"github.com/vovakirdan/tui-fighter/internal/storage"
)

// Stats layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show character sidebar
	sidebarWidth       = 20  // Width of character sidebar
	maxMoves           = 100 // Max moves to load
)

// StatsModel is the Bubble Tea model for the practice statistics screen:
// the most used moves per character.
type StatsModel struct {
	characters  []string
	charCursor  int
	store       *storage.Store
	moves       []storage.MoveCount
	summary     *storage.CharacterStats
	loadErr     error
	table       table.Model
	help        help.Model
	keys        StatsKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
	standalone  bool // back quits the program
}

// NewStatsModel creates a statistics screen starting at the given
// character. store may be nil when statistics are disabled.
func NewStatsModel(store *storage.Store, character string, width, height int) StatsModel {
	h := help.New()
	h.ShowAll = false

	m := StatsModel{
		characters:  characterNames(),
		store:       store,
		keys:        DefaultStatsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	if c, err := roster.Lookup(character); err == nil {
		m.charCursor = c.ID
	}

	m.table = m.createTable()
	m.loadMoves()
	return m
}

// characterNames returns the roster in engine order.
func characterNames() []string {
	list := roster.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

// createTable creates a new table with appropriate columns.
func (m *StatsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Move", Width: 24},
		{Title: "Type", Width: 9},
		{Title: "Count", Width: 6},
		{Title: "Last used", Width: 14},
	}

	// Calculate available width for table
	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	if nameWidth := tableWidth - 9 - 6 - 14 - 8; nameWidth > columns[0].Width {
		columns[0].Width = min(nameWidth, 36)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, summary and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadMoves loads statistics for the current character.
func (m *StatsModel) loadMoves() {
	m.moves, m.summary, m.loadErr = nil, nil, nil
	if m.store != nil {
		character := m.characters[m.charCursor]
		m.moves, m.loadErr = m.store.TopMoves(character, maxMoves)
		if m.loadErr == nil {
			m.summary, m.loadErr = m.store.GetCharacterStats(character)
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current moves.
func (m *StatsModel) updateTableRows() {
	rows := make([]table.Row, len(m.moves))
	for i, mc := range m.moves {
		rows[i] = table.Row{
			moves.DisplayName(mc.MoveName),
			mc.MoveType,
			fmt.Sprintf("%d", mc.Count),
			mc.LastUsed.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the statistics model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the statistics screen.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.NextChar), key.Matches(msg, m.keys.Right):
			m.charCursor = (m.charCursor + 1) % len(m.characters)
			m.loadMoves()
			return m, nil

		case key.Matches(msg, m.keys.PrevChar), key.Matches(msg, m.keys.Left):
			m.charCursor = (m.charCursor - 1 + len(m.characters)) % len(m.characters)
			m.loadMoves()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the statistics screen.
func (m StatsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("PRACTICE STATS - %s", m.characters[m.charCursor])
	b.WriteString(titleStyle.MarginBottom(1).Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	// Help bar
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the table with a character sidebar.
func (m StatsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Characters\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, name := range m.characters {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.charCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", boxStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders the current character with arrows above the table.
func (m StatsModel) renderNarrowLayout() string {
	var b strings.Builder
	b.WriteString(centerText(fmt.Sprintf("< %s >", m.characters[m.charCursor]), m.width))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.renderTableContent()))
	return b.String()
}

// renderTableContent renders the summary and the table or an empty message.
func (m StatsModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return emptyStyle.Render("Statistics are disabled.")
	case m.loadErr != nil:
		return errorStyle.Render(m.loadErr.Error())
	}

	var b strings.Builder
	if m.summary != nil {
		b.WriteString(fmt.Sprintf("Matches %d  |  Wins %d  |  Moves landed %d\n\n",
			m.summary.Matches, m.summary.Wins, m.summary.Detections))
	}
	if len(m.moves) == 0 {
		b.WriteString(emptyStyle.Render("No moves recorded yet.\nPractice a combo to see it here!"))
		return b.String()
	}
	b.WriteString(m.table.View())
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m StatsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m StatsModel) IsQuitting() bool {
	return m.quitting
}

// RunStats runs the statistics screen on its own.
func RunStats(store *storage.Store, character string, width, height int) error {
	model := NewStatsModel(store, character, width, height)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
