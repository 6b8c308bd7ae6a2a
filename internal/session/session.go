package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/input"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/protocol"
	"github.com/vovakirdan/tui-fighter/internal/roster"
	"github.com/vovakirdan/tui-fighter/internal/transport"
)

// Options configures a new Session.
type Options struct {
	ID           ID // generated when empty
	Moves        *movedata.ExtraMoves
	Settings     Settings
	ComboTimeout time.Duration
	HistoryLimit int
	Sender       input.Sender // nil for offline practice
	Recorder     Recorder     // optional
	Logger       *log.Logger
	EventBuffer  int
}

// Session is one client's state. Safe for concurrent use.
type Session struct {
	id         ID
	data       *movedata.ExtraMoves
	dispatcher *input.Dispatcher
	recorder   Recorder
	events     *Channel
	logger     *log.Logger
	frames     atomic.Uint64

	mu       sync.RWMutex
	settings Settings
	sender   input.Sender
	game     protocol.GameState
	conn     transport.State
	closers  []func()
}

// New creates a session and compiles the move table for the initial
// settings.
func New(opts Options) (*Session, error) {
	settings := withDefaults(opts.Settings)
	if err := validate(settings); err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = NewID()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("session", string(id)[:min(8, len(id))])

	s := &Session{
		id:       id,
		data:     opts.Moves,
		recorder: opts.Recorder,
		events:   NewChannel(opts.EventBuffer),
		logger:   logger,
		settings: settings,
		sender:   opts.Sender,
		game:     protocol.GameState{Status: protocol.StatusInitializing},
	}
	s.dispatcher = input.NewDispatcher(opts.Sender, opts.ComboTimeout, opts.HistoryLimit, logger)
	s.dispatcher.Observe(s.onDetection)
	s.recompile()
	return s, nil
}

// withDefaults fills unset fields from DefaultSettings. A zero Settings
// is DefaultSettings.
func withDefaults(st Settings) Settings {
	def := DefaultSettings()
	if st == (Settings{}) {
		return def
	}
	fill := func(p, d core.PlayerSettings) core.PlayerSettings {
		if p.Character == "" {
			p.Character = d.Character
		}
		if p.Outfit == 0 {
			p.Outfit = d.Outfit
		}
		if p.SuperArt == 0 {
			p.SuperArt = d.SuperArt
		}
		return p
	}
	st.Player1 = fill(st.Player1, def.Player1)
	st.Player2 = fill(st.Player2, def.Player2)
	if st.Difficulty == "" {
		st.Difficulty = def.Difficulty
	}
	return st
}

func validate(st Settings) error {
	for _, p := range []core.PlayerSettings{st.Player1, st.Player2} {
		if !roster.Exists(p.Character) {
			return fmt.Errorf("session: unknown character %q", p.Character)
		}
		if !roster.ValidSuperArt(p.SuperArt) {
			return fmt.Errorf("session: invalid super art %d", p.SuperArt)
		}
		if !roster.ValidOutfit(p.Outfit) {
			return fmt.Errorf("session: invalid outfit %d", p.Outfit)
		}
	}
	if !slices.Contains(Difficulties, st.Difficulty) {
		return fmt.Errorf("session: unknown difficulty %q", st.Difficulty)
	}
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() ID {
	return s.id
}

// Settings returns a copy of the current loadout.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Moves returns the move data the session was built with.
func (s *Session) Moves() *movedata.ExtraMoves {
	return s.data
}

// Dispatcher returns the input dispatcher, e.g. to attach a gamepad poller.
func (s *Session) Dispatcher() *input.Dispatcher {
	return s.dispatcher
}

// Listing returns the moves overlay for the current loadout.
func (s *Session) Listing() moves.Listing {
	st := s.Settings()
	return moves.BuildListing(st.Player1.Character, s.data, st.Facing, st.Player1.SuperArt)
}

// Offline reports whether the session has no engine connection to report to.
func (s *Session) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sender == nil
}

// SetSender attaches the engine connection. Passing nil goes offline.
func (s *Session) SetSender(sender input.Sender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
	s.dispatcher.SetSender(sender)
}

// OnClose registers a function run by Close, e.g. closing the transport.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// SelectCharacter changes a player's character and resets the outfit.
// For player 1 the move table is rebuilt and the input history cleared.
func (s *Session) SelectCharacter(player core.PlayerID, name string) error {
	c, err := roster.Lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	p := s.player(player)
	changed := p.Character != c.Name
	p.Character = c.Name
	if changed {
		p.Outfit = 1
	}
	s.mu.Unlock()

	if player == core.Player1 {
		s.recompile()
		s.dispatcher.ResetHistory()
	}
	return nil
}

// SelectSuperArt changes a player's super-art slot.
// For player 1 the move table is rebuilt and the input history cleared.
func (s *Session) SelectSuperArt(player core.PlayerID, slot int) error {
	if !roster.ValidSuperArt(slot) {
		return fmt.Errorf("session: invalid super art %d", slot)
	}
	s.mu.Lock()
	s.player(player).SuperArt = slot
	s.mu.Unlock()

	if player == core.Player1 {
		s.recompile()
		s.dispatcher.ResetHistory()
	}
	return nil
}

// SelectOutfit changes a player's outfit.
func (s *Session) SelectOutfit(player core.PlayerID, outfit int) error {
	if !roster.ValidOutfit(outfit) {
		return fmt.Errorf("session: invalid outfit %d", outfit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player(player).Outfit = outfit
	return nil
}

// SetDifficulty selects an engine difficulty preset.
func (s *Session) SetDifficulty(d string) error {
	if !slices.Contains(Difficulties, d) {
		return fmt.Errorf("session: unknown difficulty %q", d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Difficulty = d
	return nil
}

// SetHumanVsLLM selects whether the local player controls player 1 or
// only watches the engine play.
func (s *Session) SetHumanVsLLM(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.HumanVsLLM = on
}

// SetFacing rebuilds the move table for the given facing. The input
// history is kept.
func (s *Session) SetFacing(f core.Facing) {
	s.mu.Lock()
	s.settings.Facing = f
	s.mu.Unlock()
	s.recompile()
}

// FlipFacing swaps the facing and returns the new one.
func (s *Session) FlipFacing() core.Facing {
	f := s.Settings().Facing.Flip()
	s.SetFacing(f)
	return f
}

// player must be called with s.mu held.
func (s *Session) player(id core.PlayerID) *core.PlayerSettings {
	if id == core.Player2 {
		return &s.settings.Player2
	}
	return &s.settings.Player1
}

// recompile holds s.mu so that concurrent selections install tables in order.
func (s *Session) recompile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.settings
	table := moves.Compile(st.Player1.Character, s.data, st.Facing, st.Player1.SuperArt)
	s.dispatcher.SetTable(table)
	s.logger.Debug("move table compiled",
		"character", st.Player1.Character, "super_art", st.Player1.SuperArt,
		"facing", st.Facing, "moves", table.Len())
}

// StartGame sends start_game with the current loadout and clears the
// input history. Offline the game is considered running immediately.
func (s *Session) StartGame() error {
	s.dispatcher.ResetHistory()
	s.frames.Store(0)

	s.mu.Lock()
	st := s.settings
	sender := s.sender
	s.game = protocol.GameState{Status: protocol.StatusInitializing}
	s.mu.Unlock()

	if sender == nil {
		s.HandleEvent(protocol.GameState{Status: protocol.StatusRunning})
		return nil
	}

	cmd := protocol.StartGame{
		HumanVsLLM:       st.HumanVsLLM,
		Player1:          st.Player1,
		Player2:          st.Player2,
		GamepadConnected: s.dispatcher.GamepadConnected(),
		Difficulty:       st.Difficulty,
	}
	if err := sender.Send(cmd); err != nil {
		return fmt.Errorf("session: start game: %w", err)
	}
	s.logger.Info("game requested", "p1", st.Player1.Character, "p2", st.Player2.Character, "difficulty", st.Difficulty)
	return nil
}

// InputEnabled reports whether inputs are currently forwarded: always
// offline, and online only while the engine reports a running match.
func (s *Session) InputEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sender == nil || (s.settings.HumanVsLLM && s.game.Status == protocol.StatusRunning)
}

// HandleInput dispatches one input edge if input is enabled.
func (s *Session) HandleInput(a core.Action, now time.Time) *moves.Match {
	if !s.InputEnabled() {
		return nil
	}
	return s.dispatcher.Handle(a, now)
}

func (s *Session) onDetection(det input.Detection) {
	s.events.Send(MoveDetectedEvent{
		Match: det.Match,
		Name:  moves.DisplayName(det.Match.Name),
		Time:  det.Time,
	})

	if s.recorder == nil {
		return
	}
	rec := DetectionRecord{
		SessionID: string(s.id),
		Character: s.Settings().Player1.Character,
		MoveType:  det.Match.Type.String(),
		MoveName:  det.Match.Name,
		At:        det.Time,
	}
	if err := s.recorder.RecordDetection(rec); err != nil {
		s.logger.Warn("cannot record detection", "err", err)
	}
}

// GameState returns the last status reported by the engine.
func (s *Session) GameState() protocol.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// Frames returns the number of frames received since the game started.
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// Connection returns the last known transport state.
func (s *Session) Connection() transport.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// HandleEvent applies one inbound engine message.
func (s *Session) HandleEvent(ev protocol.Event) {
	switch e := ev.(type) {
	case protocol.GameState:
		s.mu.Lock()
		s.game = e
		st := s.settings
		s.mu.Unlock()

		s.events.Send(StatusEvent{Status: e.Status, Winner: e.Winner, Error: e.Error, Scores: e.Scores})
		switch e.Status {
		case protocol.StatusFinished:
			s.logger.Info("game finished", "winner", e.Winner, "scores", e.Scores)
			s.recordMatch(st, e)
		case protocol.StatusError:
			s.logger.Error("engine error", "err", e.Error)
		}
	case protocol.Transition:
		s.events.Send(TransitionEvent{Kind: e.Kind, Message: e.Message()})
	case protocol.Frame:
		s.frames.Add(1)
	case protocol.Unknown:
		s.logger.Debug("ignoring message", "type", e.Type)
	}
}

func (s *Session) recordMatch(st Settings, gs protocol.GameState) {
	if s.recorder == nil {
		return
	}
	rec := MatchRecord{
		SessionID: string(s.id),
		Character: st.Player1.Character,
		Opponent:  st.Player2.Character,
		Winner:    gs.Winner,
		Won:       strings.HasPrefix(gs.Winner, "Player 1"),
		Score1:    gs.Scores[0],
		Score2:    gs.Scores[1],
		Status:    gs.Status,
	}
	if err := s.recorder.RecordMatch(rec); err != nil {
		s.logger.Warn("cannot record match", "err", err)
	}
}

// HandleTransport applies one transport event.
func (s *Session) HandleTransport(ev transport.Event) {
	switch e := ev.(type) {
	case transport.Message:
		s.HandleEvent(e.Event)
	case transport.StateChange:
		s.mu.Lock()
		s.conn = e.State
		s.mu.Unlock()
		s.events.Send(ConnectionEvent{State: e.State, Err: e.Err})
	}
}

// Pump applies transport events until ctx is cancelled, src is closed or
// the session is closed.
func (s *Session) Pump(ctx context.Context, src <-chan transport.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.events.Done():
			return
		case ev, ok := <-src:
			if !ok {
				return
			}
			s.HandleTransport(ev)
		}
	}
}

// Events returns the stream of session events for the UI.
func (s *Session) Events() <-chan Event {
	return s.events.Events()
}

// Done returns a channel closed by Close.
func (s *Session) Done() <-chan struct{} {
	return s.events.Done()
}

// Close ends the session and runs the registered close functions.
// Safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	s.events.Close()
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
