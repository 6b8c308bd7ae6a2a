// Package input turns keyboard and gamepad state into actions and feeds
// them to the move recognizer.
package input

import "github.com/vovakirdan/tui-fighter/internal/core"

// Button is a device-independent control.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonLP
	ButtonMP
	ButtonHP
	ButtonLK
	ButtonMK
	ButtonHK
	numButtons
)

var buttonNames = [numButtons]string{
	"Up", "Down", "Left", "Right", "LP", "MP", "HP", "LK", "MK", "HK",
}

func (b Button) String() string {
	if b < 0 || b >= numButtons {
		return "?"
	}
	return buttonNames[b]
}

// Buttons is the set of controls held at one instant.
type Buttons [numButtons]bool

// Any reports whether any control is held.
func (b Buttons) Any() bool {
	for _, held := range b {
		if held {
			return true
		}
	}
	return false
}

// Resolve maps held controls to a single action. Attack pairs beat single
// attacks, which beat diagonals, which beat cardinal directions. Diagonals
// are only produced when allowDiagonal is set.
func Resolve(b Buttons, allowDiagonal bool) core.Action {
	left, right := b[ButtonLeft], b[ButtonRight]
	up, down := b[ButtonUp], b[ButtonDown]

	switch {
	case b[ButtonLP] && b[ButtonLK]:
		return core.LowPunchLowKick
	case b[ButtonMP] && b[ButtonMK]:
		return core.MediumPunchMediumKick
	case b[ButtonHP] && b[ButtonHK]:
		return core.HighPunchHighKick
	case b[ButtonHP]:
		return core.HighPunch
	case b[ButtonMP]:
		return core.MediumPunch
	case b[ButtonLP]:
		return core.LowPunch
	case b[ButtonHK]:
		return core.HighKick
	case b[ButtonMK]:
		return core.MediumKick
	case b[ButtonLK]:
		return core.LowKick
	}

	if allowDiagonal {
		switch {
		case left && up:
			return core.LeftUp
		case right && up:
			return core.UpRight
		case left && down:
			return core.DownLeft
		case right && down:
			return core.RightDown
		}
	}

	switch {
	case left:
		return core.Left
	case right:
		return core.Right
	case up:
		return core.Up
	case down:
		return core.Down
	}
	return core.NoMove
}
