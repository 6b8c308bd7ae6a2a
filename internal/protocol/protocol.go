// Package protocol defines the messages exchanged with the game engine.
// Outbound messages implement Command and are serialized by Encode; inbound
// messages are parsed by Decode into one of the Event variants.
//
// Every JSON message is an envelope {"type": "...", "data": {...}}.
package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// Message type tags.
const (
	TypePlayerAction  = "player_action"
	TypeStartGame     = "start_game"
	TypeGamepadStatus = "gamepad_status"
	TypeGameState     = "game_state"
	TypeTransition    = "transition"
	TypeGameFrame     = "game_frame"
)

// MessageType mirrors the WebSocket frame kind of an inbound payload.
type MessageType int

const (
	MessageText MessageType = iota + 1
	MessageBinary
)

// ErrInvalidCommand is returned by Encode for commands that cannot be sent.
var ErrInvalidCommand = errors.New("protocol: invalid command")

// Command is an outbound message.
type Command interface {
	Type() string
}

// PlayerAction reports one input action, or a recognized move when Action
// is SuperArt or Combo.
type PlayerAction struct {
	Action   core.Action
	SuperArt string // set with core.SuperArt
	Combo    string // set with core.Combo
}

// Type implements Command.
func (PlayerAction) Type() string { return TypePlayerAction }

// StartGame asks the engine to start a match with the given loadouts.
type StartGame struct {
	HumanVsLLM       bool
	Player1          core.PlayerSettings
	Player2          core.PlayerSettings
	GamepadConnected bool
	Difficulty       string
}

// Type implements Command.
func (StartGame) Type() string { return TypeStartGame }

// GamepadStatus tells the engine whether a gamepad is attached.
type GamepadStatus struct {
	Connected bool
}

// Type implements Command.
func (GamepadStatus) Type() string { return TypeGamepadStatus }

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type playerActionData struct {
	Action   int    `json:"action"`
	SuperArt string `json:"super_art,omitempty"`
	Combo    string `json:"combo,omitempty"`
}

type startGameData struct {
	HumanVsLLM       bool                `json:"humanVsLlm"`
	Player1          core.PlayerSettings `json:"player1"`
	Player2          core.PlayerSettings `json:"player2"`
	GamepadConnected bool                `json:"gamepadConnected"`
	Difficulty       string              `json:"difficulty"`
}

type gamepadStatusData struct {
	Connected bool `json:"connected"`
}

// Encode serializes a command into its JSON envelope.
func Encode(cmd Command) ([]byte, error) {
	var data any
	switch c := cmd.(type) {
	case PlayerAction:
		if err := c.validate(); err != nil {
			return nil, err
		}
		data = playerActionData{Action: int(c.Action), SuperArt: c.SuperArt, Combo: c.Combo}
	case StartGame:
		data = startGameData(c)
	case GamepadStatus:
		data = gamepadStatusData(c)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidCommand, cmd)
	}
	return json.Marshal(envelope{Type: cmd.Type(), Data: data})
}

func (p PlayerAction) validate() error {
	switch {
	case p.Action.IsInput():
		if p.SuperArt != "" || p.Combo != "" {
			return fmt.Errorf("%w: %s carries a move name", ErrInvalidCommand, p.Action)
		}
	case p.Action == core.SuperArt:
		if p.SuperArt == "" || p.Combo != "" {
			return fmt.Errorf("%w: super art report needs exactly a super art key", ErrInvalidCommand)
		}
	case p.Action == core.Combo:
		if p.Combo == "" || p.SuperArt != "" {
			return fmt.Errorf("%w: combo report needs exactly a combo name", ErrInvalidCommand)
		}
	default:
		return fmt.Errorf("%w: action %d out of range", ErrInvalidCommand, int(p.Action))
	}
	return nil
}

// Event is an inbound message.
type Event interface {
	event()
}

// Game status values reported in GameState.
const (
	StatusInitializing = "initializing"
	StatusRunning      = "running"
	StatusFinished     = "finished"
	StatusError        = "error"
)

// GameState is the engine's match status.
type GameState struct {
	Status string `json:"status"`
	Winner string `json:"winner"`
	Error  string `json:"error"`
	Scores [2]int `json:"scores"`
}

func (GameState) event() {}

// Transition kinds.
const (
	TransitionRound = "round"
	TransitionGame  = "game"
)

// Transition announces a pause between rounds or before the final result.
type Transition struct {
	Kind string `json:"transition_type"`
}

func (Transition) event() {}

// Message returns the text shown while the transition is in progress.
func (t Transition) Message() string {
	switch t.Kind {
	case TransitionRound:
		return "Loading next round..."
	case TransitionGame:
		return "Determining winner..."
	default:
		return ""
	}
}

// Frame is one encoded video frame from the engine.
type Frame struct {
	Data []byte
}

func (Frame) event() {}

// Unknown is a well-formed message with an unrecognized type.
type Unknown struct {
	Type string
	Raw  []byte
}

func (Unknown) event() {}

// Decode parses one inbound WebSocket message.
func Decode(mt MessageType, payload []byte) (Event, error) {
	if mt == MessageBinary {
		return Frame{Data: payload}, nil
	}
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("protocol: malformed message")
	}

	typ := gjson.GetBytes(payload, "type")
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("protocol: message without type")
	}
	data := gjson.GetBytes(payload, "data")

	switch typ.String() {
	case TypeGameState:
		var gs GameState
		if err := unmarshalData(data, &gs); err != nil {
			return nil, fmt.Errorf("protocol: game_state: %w", err)
		}
		return gs, nil
	case TypeTransition:
		var tr Transition
		if err := unmarshalData(data, &tr); err != nil {
			return nil, fmt.Errorf("protocol: transition: %w", err)
		}
		return tr, nil
	case TypeGameFrame:
		frame, err := base64.StdEncoding.DecodeString(data.Get("frame").String())
		if err != nil {
			return nil, fmt.Errorf("protocol: game_frame: %w", err)
		}
		return Frame{Data: frame}, nil
	default:
		return Unknown{Type: typ.String(), Raw: payload}, nil
	}
}

func unmarshalData(data gjson.Result, v any) error {
	if !data.Exists() || data.Type == gjson.Null {
		return nil
	}
	if !data.IsObject() {
		return fmt.Errorf("data is not an object")
	}
	return json.Unmarshal([]byte(data.Raw), v)
}
