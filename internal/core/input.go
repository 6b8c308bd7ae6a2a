package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action is one discrete input symbol as understood by the remote engine.
// Values 0-17 are inputs a player can produce; SuperArt and Combo are only
// ever synthesized by the move recognizer and never appear in a sequence.
type Action int

const (
	NoMove Action = iota
	Left
	LeftUp
	Up
	UpRight
	Right
	RightDown
	Down
	DownLeft
	LowPunch
	MediumPunch
	HighPunch
	LowKick
	MediumKick
	HighKick
	LowPunchLowKick
	MediumPunchMediumKick
	HighPunchHighKick
	SuperArt
	Combo
)

// NumInputActions is the number of base input symbols (indices 0-17).
const NumInputActions = 18

type actionInfo struct {
	name    string
	key     string // keyboard glyph
	gamepad string // gamepad glyph
}

var actionTable = [...]actionInfo{
	NoMove:                {"No-Move", "", ""},
	Left:                  {"Left", "←", "←"},
	LeftUp:                {"Left+Up", "↖", "↖"},
	Up:                    {"Up", "↑", "↑"},
	UpRight:               {"Up+Right", "↗", "↗"},
	Right:                 {"Right", "→", "→"},
	RightDown:             {"Right+Down", "↘", "↘"},
	Down:                  {"Down", "↓", "↓"},
	DownLeft:              {"Down+Left", "↙", "↙"},
	LowPunch:              {"Low Punch", "J", "A"},
	MediumPunch:           {"Medium Punch", "K", "B"},
	HighPunch:             {"High Punch", "L", "RB"},
	LowKick:               {"Low Kick", "U", "X"},
	MediumKick:            {"Medium Kick", "I", "Y"},
	HighKick:              {"High Kick", "O", "LB"},
	LowPunchLowKick:       {"Low Punch+Low Kick", "J + U", "A + X"},
	MediumPunchMediumKick: {"Medium Punch+Medium Kick", "K + I", "B + Y"},
	HighPunchHighKick:     {"High Punch+High Kick", "L + O", "RB + LB"},
	SuperArt:              {"Super Art", "", ""},
	Combo:                 {"Combo", "", ""},
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionTable) {
		return "Unknown"
	}
	return actionTable[a].name
}

// Glyph returns the symbol shown in move lists for this action.
// Gamepad glyphs follow the standard mapping (A/B/X/Y/LB/RB).
func (a Action) Glyph(gamepad bool) string {
	if a < 0 || int(a) >= len(actionTable) {
		return "?"
	}
	if gamepad {
		return actionTable[a].gamepad
	}
	return actionTable[a].key
}

// IsInput reports whether the action is a base input symbol that may
// appear in a stored sequence.
func (a Action) IsInput() bool {
	return a >= NoMove && a < NumInputActions
}

// IsDirection reports whether the action is one of the eight compass directions.
func (a Action) IsDirection() bool {
	return a >= Left && a <= DownLeft
}

// aliases mirrors the spellings used in the engine's move tables.
var aliases = map[string]Action{
	"up+left":    LeftUp,
	"right+up":   UpRight,
	"down+right": RightDown,
	"left+down":  DownLeft,
	"low":        LowKick,
	"medium":     MediumKick,
}

// ParseAction converts a name ("Down+Right", "Low Punch") or a numeric
// index ("9") into an input Action. Meta actions are rejected.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		a := Action(n)
		if !a.IsInput() {
			return NoMove, fmt.Errorf("core: action index %d out of range", n)
		}
		return a, nil
	}

	lower := strings.ToLower(s)
	for i := NoMove; i < NumInputActions; i++ {
		if strings.ToLower(actionTable[i].name) == lower {
			return i, nil
		}
	}
	if a, ok := aliases[lower]; ok {
		return a, nil
	}
	return NoMove, fmt.Errorf("core: unknown action %q", s)
}

// InputEvent is a single qualifying press captured from a device.
type InputEvent struct {
	Action Action
	Time   time.Time
}

// NewInputEvent creates an input event stamped with the given time.
func NewInputEvent(a Action, t time.Time) InputEvent {
	return InputEvent{Action: a, Time: t}
}
