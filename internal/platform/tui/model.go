package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/protocol"
	"github.com/vovakirdan/tui-fighter/internal/session"
	"github.com/vovakirdan/tui-fighter/internal/transport"
)

// moveFlash is how long a detected move stays highlighted.
const moveFlash = 1500 * time.Millisecond

// FightModel is the play screen. Keys are fed to a KeyState and every
// change of the held set is dispatched as one input edge.
type FightModel struct {
	sess   *session.Session
	keys   *input.KeyState
	keymap FightKeyMap
	help   help.Model
	seq    int
	width  int
	height int

	showMoves  bool
	lastMove   *session.MoveDetectedEvent
	status     session.StatusEvent
	transition string
	conn       transport.State
	connErr    error

	quitting   bool
	backToMenu bool
}

// NewFightModel creates a fight screen for the session. seq must differ
// from the previous fight screen's so its tick loop stops.
func NewFightModel(sess *session.Session, timing input.KeyTiming, seq, width, height int) FightModel {
	h := help.New()
	h.Width = width

	gs := sess.GameState()
	return FightModel{
		sess:   sess,
		keys:   input.NewKeyState(input.DefaultKeyMap(), timing),
		keymap: DefaultFightKeyMap(),
		help:   h,
		seq:    seq,
		width:  width,
		height: height,
		status: session.StatusEvent{Status: gs.Status, Winner: gs.Winner, Error: gs.Error, Scores: gs.Scores},
		conn:   sess.Connection(),
	}
}

// Init starts the key-release tick loop.
func (m FightModel) Init() tea.Cmd {
	return tickCmd(expiryInterval, m.seq)
}

// Update handles messages.
func (m FightModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg, time.Now())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m.handleTick(msg.Time)
	case session.Event:
		return m.ApplyEvent(msg), nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m FightModel) handleKey(msg tea.KeyMsg, now time.Time) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Back):
		m.release(now)
		m.backToMenu = true
		return m, nil
	case key.Matches(msg, m.keymap.Moves):
		m.showMoves = !m.showMoves
		return m, nil
	case key.Matches(msg, m.keymap.Flip):
		m.sess.FlipFacing()
		return m, nil
	case key.Matches(msg, m.keymap.Restart):
		if m.status.Status == protocol.StatusFinished || m.status.Status == protocol.StatusError {
			m.lastMove = nil
			m.transition = ""
			if err := m.sess.StartGame(); err != nil {
				m.status = session.StatusEvent{Status: protocol.StatusError, Error: err.Error()}
			}
		}
		return m, nil
	}

	switch _, edge := m.keys.Press(msg.String(), now); edge {
	case input.EdgeRetap:
		m.sess.HandleInput(core.NoMove, now)
		m.sess.HandleInput(m.keys.Action(), now)
	case input.EdgeChanged:
		m.sess.HandleInput(m.keys.Action(), now)
	}
	return m, nil
}

// handleTick releases keys whose hold window passed.
func (m FightModel) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.keys.Expire(now) {
		m.sess.HandleInput(m.keys.Action(), now)
	}
	return m, tickCmd(expiryInterval, m.seq)
}

// release lets go of every held key so the engine does not see a stuck input.
func (m FightModel) release(now time.Time) {
	if m.keys.Buttons().Any() {
		m.keys.Reset()
		m.sess.HandleInput(core.NoMove, now)
	}
}

// ApplyEvent folds one session event into the screen state.
func (m FightModel) ApplyEvent(ev session.Event) FightModel {
	switch e := ev.(type) {
	case session.MoveDetectedEvent:
		m.lastMove = &e
	case session.StatusEvent:
		m.status = e
		if e.Status == protocol.StatusRunning {
			m.transition = ""
		}
	case session.TransitionEvent:
		m.transition = e.Message
	case session.ConnectionEvent:
		m.conn = e.State
		m.connErr = e.Err
	}
	return m
}

// View renders the fight screen.
func (m FightModel) View() string {
	if m.quitting {
		return ""
	}

	st := m.sess.Settings()
	gamepad := m.sess.Dispatcher().GamepadConnected()

	var b strings.Builder
	header := fmt.Sprintf("%s (SA %d) vs %s  |  %s  |  facing %s",
		st.Player1.Character, st.Player1.SuperArt, st.Player2.Character, st.Difficulty, st.Facing)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.statusLine(gamepad))
	b.WriteString("\n\n")

	if m.transition != "" {
		b.WriteString(titleStyle.Render(m.transition))
		b.WriteString("\n\n")
	}

	switch m.status.Status {
	case protocol.StatusFinished:
		b.WriteString(titleStyle.Render(fmt.Sprintf("Winner: %s   %d - %d", m.status.Winner, m.status.Scores[0], m.status.Scores[1])))
		b.WriteString("\n\n")
	case protocol.StatusError:
		b.WriteString(errorStyle.Render("Engine error: " + m.status.Error))
		b.WriteString("\n\n")
	}

	b.WriteString(m.moveLine())
	b.WriteString("\n")
	b.WriteString("Input:  " + renderHistory(m.sess.Dispatcher().History(), gamepad))
	b.WriteString("\n")
	held := m.keys.Action()
	heldText := dimStyle.Render("-")
	if held != core.NoMove {
		heldText = held.String()
	}
	b.WriteString("Held:   " + heldText)
	b.WriteString("\n")

	if m.showMoves {
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(RenderListing(m.sess.Listing(), gamepad)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keymap)))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m FightModel) statusLine(gamepad bool) string {
	parts := []string{}
	if m.sess.Offline() {
		parts = append(parts, "offline practice")
	} else {
		conn := m.conn.String()
		if m.connErr != nil {
			conn += ": " + m.connErr.Error()
		}
		parts = append(parts, "engine "+conn)
		parts = append(parts, fmt.Sprintf("status %s", m.status.Status))
		parts = append(parts, fmt.Sprintf("score %d - %d", m.status.Scores[0], m.status.Scores[1]))
		parts = append(parts, fmt.Sprintf("frames %d", m.sess.Frames()))
	}
	if gamepad {
		parts = append(parts, "gamepad")
	}
	if !m.sess.InputEnabled() {
		parts = append(parts, "input paused")
	}
	return dimStyle.Render(strings.Join(parts, "  |  "))
}

func (m FightModel) moveLine() string {
	if m.lastMove == nil {
		return "Move:   " + dimStyle.Render("-")
	}
	text := fmt.Sprintf("%s (%s)", m.lastMove.Name, m.lastMove.Match.Type)
	if time.Since(m.lastMove.Time) < moveFlash {
		return "Move:   " + moveStyle(m.lastMove.Match.Type).Render("★ "+text)
	}
	return "Move:   " + text
}

// IsQuitting returns true if user requested to quit entirely.
func (m FightModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m FightModel) BackToMenu() bool {
	return m.backToMenu
}

// LastMove returns the most recent detection shown, if any.
func (m FightModel) LastMove() (moves.Match, bool) {
	if m.lastMove == nil {
		return moves.Match{}, false
	}
	return m.lastMove.Match, true
}
