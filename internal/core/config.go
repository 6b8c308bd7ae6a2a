package core

import (
	"fmt"
	"strings"
)

// Facing is one of the two mirrored orientations a move sequence is stored under.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

// String returns the key used for this facing in move data ("left"/"right").
func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// Flip returns the opposite facing.
func (f Facing) Flip() Facing {
	if f == FacingLeft {
		return FacingRight
	}
	return FacingLeft
}

// ParseFacing accepts "left" or "right" (case-insensitive).
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return FacingLeft, nil
	case "right", "":
		return FacingRight, nil
	default:
		return FacingRight, fmt.Errorf("core: unknown facing %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Facing) UnmarshalText(b []byte) error {
	v, err := ParseFacing(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// PlayerID identifies one of the two sides of a match.
type PlayerID int

const (
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// String returns "P1" or "P2".
func (p PlayerID) String() string {
	return fmt.Sprintf("P%d", int(p))
}

// PlayerSettings is the loadout sent to the engine for one side.
type PlayerSettings struct {
	Character string `json:"character" yaml:"character"`
	Outfit    int    `json:"outfit" yaml:"outfit"`
	SuperArt  int    `json:"superArt" yaml:"super_art"`
}

// DefaultPlayerSettings returns the loadout used before anything is selected.
func DefaultPlayerSettings(character string) PlayerSettings {
	return PlayerSettings{
		Character: character,
		Outfit:    1,
		SuperArt:  1,
	}
}
