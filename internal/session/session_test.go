package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/protocol"
	"github.com/vovakirdan/tui-fighter/internal/transport"
)

type fakeSender struct {
	mu   sync.Mutex
	cmds []protocol.Command
}

func (f *fakeSender) Send(cmd protocol.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeSender) sent() []protocol.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Command(nil), f.cmds...)
}

type fakeRecorder struct {
	mu         sync.Mutex
	detections []DetectionRecord
	matches    []MatchRecord
}

func (f *fakeRecorder) RecordDetection(rec DetectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detections = append(f.detections, rec)
	return nil
}

func (f *fakeRecorder) RecordMatch(rec MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, rec)
	return nil
}

func newSession(t *testing.T, sender *fakeSender, rec Recorder) *Session {
	t.Helper()
	data, err := movedata.Default()
	require.NoError(t, err)

	opts := Options{Moves: data, Recorder: rec}
	if sender != nil {
		opts.Sender = sender
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no session event")
		return nil
	}
}

func TestNewDefaults(t *testing.T) {
	s := newSession(t, nil, nil)
	st := s.Settings()
	assert.Equal(t, "Ken", st.Player1.Character)
	assert.Equal(t, "Ryu", st.Player2.Character)
	assert.Equal(t, "basic", st.Difficulty)
	assert.NotEmpty(t, s.ID())
	assert.True(t, s.Offline())
	assert.Positive(t, s.Dispatcher().Table().Len())

	_, err := New(Options{Settings: Settings{Player1: core.PlayerSettings{Character: "Nobody"}}})
	assert.Error(t, err)
}

func TestOfflineTargetCombo(t *testing.T) {
	rec := &fakeRecorder{}
	s := newSession(t, nil, rec)
	require.True(t, s.InputEnabled())

	t0 := time.Now()
	assert.Nil(t, s.HandleInput(core.LowPunch, t0))
	m := s.HandleInput(core.MediumPunch, t0.Add(100*time.Millisecond))
	require.NotNil(t, m)
	assert.Equal(t, "Target Combo", m.Name)

	ev, ok := nextEvent(t, s).(MoveDetectedEvent)
	require.True(t, ok)
	assert.Equal(t, moves.TypeCombo, ev.Match.Type)
	assert.Equal(t, "Target Combo", ev.Name)

	require.Len(t, rec.detections, 1)
	assert.Equal(t, DetectionRecord{
		SessionID: string(s.ID()),
		Character: "Ken",
		MoveType:  "Combo",
		MoveName:  "Target Combo",
		At:        t0.Add(100 * time.Millisecond),
	}, rec.detections[0])
}

func TestOnlineInputGating(t *testing.T) {
	sender := &fakeSender{}
	s := newSession(t, sender, nil)

	assert.False(t, s.InputEnabled(), "input waits for a running match")
	assert.Nil(t, s.HandleInput(core.Left, time.Now()))
	assert.Empty(t, sender.sent())

	require.NoError(t, s.SelectOutfit(core.Player1, 3))
	require.NoError(t, s.SetDifficulty("expert"))
	require.NoError(t, s.StartGame())

	cmds := sender.sent()
	require.Len(t, cmds, 1)
	start, ok := cmds[0].(protocol.StartGame)
	require.True(t, ok)
	assert.Equal(t, core.PlayerSettings{Character: "Ken", Outfit: 3, SuperArt: 1}, start.Player1)
	assert.Equal(t, "expert", start.Difficulty)
	assert.True(t, start.HumanVsLLM)

	s.HandleEvent(protocol.GameState{Status: protocol.StatusRunning})
	assert.True(t, s.InputEnabled())
	assert.Equal(t, StatusEvent{Status: protocol.StatusRunning}, nextEvent(t, s))

	s.HandleInput(core.Left, time.Now())
	assert.Equal(t, protocol.PlayerAction{Action: core.Left}, sender.sent()[1])
}

func TestSelectionRebuildsTable(t *testing.T) {
	s := newSession(t, nil, nil)
	t0 := time.Now()

	s.HandleInput(core.Down, t0)
	require.Len(t, s.Dispatcher().History(), 1)
	s.FlipFacing()
	assert.Equal(t, core.FacingLeft, s.Settings().Facing)
	assert.Len(t, s.Dispatcher().History(), 1, "facing keeps the history")

	require.NoError(t, s.SelectOutfit(core.Player1, 5))
	require.NoError(t, s.SelectCharacter(core.Player1, "gouki"))
	assert.Equal(t, "Gouki", s.Settings().Player1.Character)
	assert.Equal(t, 1, s.Settings().Player1.Outfit, "outfit resets on character change")
	assert.Empty(t, s.Dispatcher().History())

	listing := s.Listing()
	var names []string
	for _, r := range listing.SuperArts {
		names = append(names, r.Key)
	}
	assert.Equal(t, []string{"1 Messatsu Gou Hadou", "Max-1 Messatsu Gou Hadou", "Max Shungokusatsu"}, names)

	require.NoError(t, s.SelectSuperArt(core.Player1, 2))
	names = names[:0]
	for _, r := range s.Listing().SuperArts {
		names = append(names, r.Key)
	}
	assert.Equal(t, []string{"2 Messatsu Gou Shoryu", "Max Shungokusatsu"}, names)

	assert.Error(t, s.SelectSuperArt(core.Player1, 4))
	assert.Error(t, s.SelectCharacter(core.Player2, "Akuma"))
	assert.Error(t, s.SetDifficulty("nightmare"))

	require.NoError(t, s.SelectCharacter(core.Player2, "Chun-Li"))
	assert.Equal(t, "Chun-Li", s.Settings().Player2.Character)
	assert.Equal(t, "Gouki", s.Settings().Player1.Character)
}

func TestFinishedMatchIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	s := newSession(t, &fakeSender{}, rec)

	s.HandleEvent(protocol.Transition{Kind: protocol.TransitionGame})
	s.HandleEvent(protocol.GameState{Status: protocol.StatusFinished, Winner: "Player 1 (You)", Scores: [2]int{1, 0}})

	assert.Equal(t, TransitionEvent{Kind: "game", Message: "Determining winner..."}, nextEvent(t, s))
	assert.Equal(t, StatusEvent{Status: "finished", Winner: "Player 1 (You)", Scores: [2]int{1, 0}}, nextEvent(t, s))

	require.Len(t, rec.matches, 1)
	m := rec.matches[0]
	assert.True(t, m.Won)
	assert.Equal(t, "Ken", m.Character)
	assert.Equal(t, "Ryu", m.Opponent)
	assert.Equal(t, 1, m.Score1)
}

func TestPumpTransportEvents(t *testing.T) {
	s := newSession(t, &fakeSender{}, nil)
	src := make(chan transport.Event, 4)
	src <- transport.StateChange{State: transport.StateConnected}
	src <- transport.Message{Event: protocol.Frame{Data: []byte{1}}}
	src <- transport.Message{Event: protocol.Frame{Data: []byte{2}}}
	close(src)

	s.Pump(context.Background(), src)

	assert.Equal(t, ConnectionEvent{State: transport.StateConnected}, nextEvent(t, s))
	assert.Equal(t, transport.StateConnected, s.Connection())
	assert.Equal(t, uint64(2), s.Frames())

	require.NoError(t, s.StartGame())
	assert.Zero(t, s.Frames())
}

func TestCloseAndRegistry(t *testing.T) {
	s := newSession(t, nil, nil)
	closed := 0
	s.OnClose(func() { closed++ })

	reg := NewRegistry()
	reg.Register(s)
	got, ok := reg.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, reg.Count())

	reg.CloseAll()
	s.Close()
	assert.Equal(t, 1, closed)
	assert.Zero(t, reg.Count())

	select {
	case <-s.Done():
	default:
		t.Fatal("session not closed")
	}
}

func TestChannelDropsOldest(t *testing.T) {
	c := NewChannel(2)
	c.Send(TransitionEvent{Kind: "1"})
	c.Send(TransitionEvent{Kind: "2"})
	c.Send(TransitionEvent{Kind: "3"})

	assert.Equal(t, TransitionEvent{Kind: "2"}, <-c.Events())
	assert.Equal(t, TransitionEvent{Kind: "3"}, <-c.Events())

	c.Close()
	c.Close()
	c.Send(TransitionEvent{Kind: "4"})
	assert.Empty(t, c.Events())
}
