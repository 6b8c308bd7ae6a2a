package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/session"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newOfflineSession(t *testing.T) *session.Session {
	t.Helper()
	data, err := movedata.Default()
	require.NoError(t, err)
	s, err := session.New(session.Options{Moves: data})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSelectModelChangesLoadout(t *testing.T) {
	s := newOfflineSession(t)
	m := NewSelectModel(s, 80, 24)

	next := func(msg tea.KeyMsg) {
		updated, _ := m.Update(msg)
		m = updated.(SelectModel)
	}

	next(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Sean", s.Settings().Player1.Character)
	next(tea.KeyMsg{Type: tea.KeyLeft})
	next(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "Yang", s.Settings().Player1.Character)

	next(tea.KeyMsg{Type: tea.KeyDown})
	next(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 3, s.Settings().Player1.SuperArt, "super art wraps")

	next(tea.KeyMsg{Type: tea.KeyDown})
	next(tea.KeyMsg{Type: tea.KeyDown})
	next(tea.KeyMsg{Type: tea.KeyDown})
	next(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "advanced", s.Settings().Difficulty)

	assert.Contains(t, m.View(), "Yang")
	assert.False(t, m.Started())

	for m.cursor != rowStart {
		next(tea.KeyMsg{Type: tea.KeyDown})
	}
	next(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.Started())
}

func TestFightModelDispatchesKeyEdges(t *testing.T) {
	s := newOfflineSession(t)
	require.NoError(t, s.StartGame())
	m := NewFightModel(s, input.KeyTiming{HoldWindow: 90 * time.Millisecond}, 1, 80, 24)

	t0 := time.Now()
	updated, _ := m.handleKey(runeKey('j'), t0)
	m = updated.(FightModel)
	assert.Equal(t, core.LowPunch, s.Dispatcher().LastAction())

	// Stale loop ticks are ignored
	updated, cmd := m.Update(TickMsg{Time: t0.Add(time.Second), Seq: 7})
	m = updated.(FightModel)
	assert.Nil(t, cmd)
	assert.Equal(t, core.LowPunch, s.Dispatcher().LastAction())

	updated, _ = m.handleTick(t0.Add(100 * time.Millisecond))
	m = updated.(FightModel)
	assert.Equal(t, core.LowPunch, s.Dispatcher().LastAction(), "held until auto-repeat could start")

	updated, _ = m.handleKey(runeKey('k'), t0.Add(200*time.Millisecond))
	m = updated.(FightModel)
	assert.Equal(t, core.MediumPunch, s.Dispatcher().LastAction())

	var ev session.Event
	select {
	case ev = <-s.Events():
	case <-time.After(time.Second):
	}
	for {
		if _, ok := ev.(session.MoveDetectedEvent); ok || ev == nil {
			break
		}
		select {
		case ev = <-s.Events():
		case <-time.After(time.Second):
			ev = nil
		}
	}
	require.NotNil(t, ev, "no move detected")
	m = m.ApplyEvent(ev)

	match, ok := m.LastMove()
	require.True(t, ok)
	assert.Equal(t, moves.Match{Type: moves.TypeCombo, Name: "Target Combo"}, match)
	assert.Contains(t, m.View(), "Target Combo")
}

func TestFightModelOverlayAndFacing(t *testing.T) {
	s := newOfflineSession(t)
	m := NewFightModel(s, input.KeyTiming{}, 1, 100, 40)

	updated, _ := m.handleKey(runeKey('?'), time.Now())
	m = updated.(FightModel)
	assert.True(t, m.showMoves)
	assert.Contains(t, m.View(), "Target Combo")

	updated, _ = m.handleKey(runeKey('f'), time.Now())
	m = updated.(FightModel)
	assert.Equal(t, core.FacingLeft, s.Settings().Facing)
	assert.Equal(t, core.NoMove, s.Dispatcher().LastAction(), "UI keys are not inputs")
}

func TestFightModelRetapAndRelease(t *testing.T) {
	s := newOfflineSession(t)
	require.NoError(t, s.StartGame())
	m := NewFightModel(s, input.KeyTiming{}, 1, 80, 24)
	t0 := time.Now()

	press := func(r rune, at time.Duration) {
		updated, _ := m.handleKey(runeKey(r), t0.Add(at))
		m = updated.(FightModel)
	}

	press('k', 0)
	press('k', 120*time.Millisecond)
	history := s.Dispatcher().History()
	require.Len(t, history, 2, "a quick second tap is recorded twice")
	assert.Equal(t, core.MediumPunch, history[1].Action)

	// A held key that auto-repeats is recorded once
	press('l', 400*time.Millisecond)
	press('l', 700*time.Millisecond)
	press('l', 730*time.Millisecond)
	assert.Len(t, s.Dispatcher().History(), 3)

	updated, _ := m.handleTick(t0.Add(730*time.Millisecond + input.DefaultHoldWindow))
	m = updated.(FightModel)
	assert.Equal(t, core.NoMove, s.Dispatcher().LastAction())
}

func TestSessionModelFlow(t *testing.T) {
	s := newOfflineSession(t)
	m := NewSessionModel(s, nil, SessionModelOptions{Width: 80, Height: 24})

	step := func(msg tea.Msg) tea.Cmd {
		updated, cmd := m.Update(msg)
		m = updated.(SessionModel)
		return cmd
	}

	for m.menu.cursor != rowStart {
		step(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.NotNil(t, step(tea.KeyMsg{Type: tea.KeyEnter}), "fight screen starts its tick loop")
	assert.Equal(t, screenFight, m.screen)
	assert.True(t, s.InputEnabled())

	step(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenSelect, m.screen)

	for m.menu.cursor != rowStats {
		step(tea.KeyMsg{Type: tea.KeyDown})
	}
	step(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenStats, m.screen)
	assert.Contains(t, m.View(), "Statistics are disabled.")

	step(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, screenSelect, m.screen)

	step(session.TransitionEvent{Kind: "round", Message: "Loading next round..."})
	assert.Equal(t, "Loading next round...", m.fight.transition)
}

func TestRenderListing(t *testing.T) {
	data, err := movedata.Default()
	require.NoError(t, err)

	out := RenderListing(moves.BuildListing("Ken", data, core.FacingRight, 1), false)
	assert.True(t, strings.HasPrefix(out, titleStyle.Render("Ken - Moves")))
	assert.Contains(t, out, "Shoryu-Reppa")
	assert.Contains(t, out, "J K")

	empty := RenderListing(moves.BuildListing("Nobody", data, core.FacingRight, 1), false)
	assert.Contains(t, empty, "No moves for this loadout.")
}
