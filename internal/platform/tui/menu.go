package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/roster"
	"github.com/vovakirdan/tui-fighter/internal/session"
)

// menuRow identifies a line of the loadout menu.
type menuRow int

const (
	rowFighter menuRow = iota
	rowSuperArt
	rowOutfit
	rowOpponent
	rowDifficulty
	rowMode
	rowStart
	rowStats
	rowQuit
	numRows
)

// SelectModel is the loadout menu: character, super art, outfit, opponent
// and difficulty. Changes are applied to the session immediately.
type SelectModel struct {
	sess      *session.Session
	cursor    menuRow
	width     int
	height    int
	err       error
	quitting  bool
	started   bool
	wantStats bool
}

// NewSelectModel creates a new menu model.
func NewSelectModel(sess *session.Session, width, height int) SelectModel {
	return SelectModel{
		sess:   sess,
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m SelectModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m SelectModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		m.cursor = (m.cursor + numRows - 1) % numRows

	case MenuActionDown:
		m.cursor = (m.cursor + 1) % numRows

	case MenuActionPrev:
		m.err = m.change(-1)

	case MenuActionNext:
		m.err = m.change(1)

	case MenuActionSelect:
		switch m.cursor {
		case rowStart:
			m.started = true
		case rowStats:
			m.wantStats = true
		case rowQuit:
			m.quitting = true
			return m, tea.Quit
		default:
			m.err = m.change(1)
		}
	}

	return m, nil
}

// change steps the value under the cursor by delta.
func (m SelectModel) change(delta int) error {
	st := m.sess.Settings()
	switch m.cursor {
	case rowFighter:
		return m.sess.SelectCharacter(core.Player1, stepCharacter(st.Player1.Character, delta))
	case rowSuperArt:
		return m.sess.SelectSuperArt(core.Player1, wrap(st.Player1.SuperArt, delta, roster.MaxSuperArt))
	case rowOutfit:
		return m.sess.SelectOutfit(core.Player1, wrap(st.Player1.Outfit, delta, roster.MaxOutfit))
	case rowOpponent:
		return m.sess.SelectCharacter(core.Player2, stepCharacter(st.Player2.Character, delta))
	case rowDifficulty:
		i := indexOf(session.Difficulties, st.Difficulty)
		return m.sess.SetDifficulty(session.Difficulties[(i+delta+len(session.Difficulties))%len(session.Difficulties)])
	case rowMode:
		m.sess.SetHumanVsLLM(!st.HumanVsLLM)
	}
	return nil
}

// stepCharacter moves through the roster in engine order.
func stepCharacter(current string, delta int) string {
	list := roster.List()
	i := 0
	if c, err := roster.Lookup(current); err == nil {
		i = c.ID
	}
	return list[(i+delta+len(list))%len(list)].Name
}

// wrap steps a 1-based value within [1, n].
func wrap(v, delta, n int) int {
	return (v-1+delta+n)%n + 1
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

// View renders the menu.
func (m SelectModel) View() string {
	if m.quitting {
		return ""
	}

	st := m.sess.Settings()
	mode := "Human vs LLM"
	if !st.HumanVsLLM {
		mode = "LLM vs LLM (watch)"
	}
	labels := [numRows]string{
		rowFighter:    fmt.Sprintf("Fighter     < %s >", st.Player1.Character),
		rowSuperArt:   fmt.Sprintf("Super Art   < %d >", st.Player1.SuperArt),
		rowOutfit:     fmt.Sprintf("Outfit      < %d >", st.Player1.Outfit),
		rowOpponent:   fmt.Sprintf("Opponent    < %s >", st.Player2.Character),
		rowDifficulty: fmt.Sprintf("Difficulty  < %s >", st.Difficulty),
		rowMode:       fmt.Sprintf("Mode        < %s >", mode),
		rowStart:      "Fight!",
		rowStats:      "Practice stats",
		rowQuit:       "Quit",
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  F I G H T E R  "), m.width))
	b.WriteString("\n\n")

	subtitle := "Choose your loadout"
	if m.sess.Offline() {
		subtitle += " (offline practice)"
	}
	b.WriteString(centerText(dimStyle.Render(subtitle), m.width))
	b.WriteString("\n\n")

	for i, label := range labels {
		line := "  " + label
		if menuRow(i) == m.cursor {
			line = selectedStyle.Render("> " + label)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
		if menuRow(i) == rowMode {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	listing := m.sess.Listing()
	summary := fmt.Sprintf("%d super arts, %d combos available", len(listing.SuperArts), len(listing.Combos))
	b.WriteString(centerText(dimStyle.Render(summary), m.width))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(centerText(errorStyle.Render(m.err.Error()), m.width))
		b.WriteString("\n")
	}

	// Footer with controls
	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Left/Right: Change  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Started returns true if the user asked to fight.
func (m SelectModel) Started() bool {
	return m.started
}

// WantsStats returns true if the user asked for the statistics screen.
func (m SelectModel) WantsStats() bool {
	return m.wantStats
}

// IsQuitting returns true if user requested to quit.
func (m SelectModel) IsQuitting() bool {
	return m.quitting
}
