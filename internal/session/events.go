package session

import (
	"time"

	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/transport"
)

// Event is sent from a session to its UI.
type Event interface {
	sessionEvent()
}

// MoveDetectedEvent is sent when the recognizer reports a move.
type MoveDetectedEvent struct {
	Match moves.Match
	Name  string // display name
	Time  time.Time
}

func (MoveDetectedEvent) sessionEvent() {}

// StatusEvent is sent when the engine reports a new game state.
type StatusEvent struct {
	Status string
	Winner string
	Error  string
	Scores [2]int
}

func (StatusEvent) sessionEvent() {}

// TransitionEvent is sent between rounds and before the result.
type TransitionEvent struct {
	Kind    string
	Message string
}

func (TransitionEvent) sessionEvent() {}

// ConnectionEvent is sent when the engine connection changes state.
type ConnectionEvent struct {
	State transport.State
	Err   error
}

func (ConnectionEvent) sessionEvent() {}
