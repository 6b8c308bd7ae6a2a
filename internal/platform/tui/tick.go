// Package tui provides the Bubble Tea front end: the loadout menu, the
// fight screen, the practice statistics and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-fighter/internal/session"
)

// expiryInterval is how often held keys are checked for release.
const expiryInterval = 15 * time.Millisecond

// TickMsg triggers a key-release check. Seq identifies the tick loop so a
// stale loop from an earlier fight screen stops.
type TickMsg struct {
	Time time.Time
	Seq  int
}

// tickCmd returns a Bubble Tea command that sends a tick after interval.
func tickCmd(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Seq: seq}
	})
}

// waitForEvent returns a command that waits for the next session event.
func waitForEvent(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-s.Events():
			return ev
		case <-s.Done():
			return nil
		}
	}
}
