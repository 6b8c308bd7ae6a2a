package input

import (
	"strings"
	"time"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// Terminals report a press, then after the auto-repeat delay (usually
// 250-600 ms) a stream of repeats, and never a release. A key that has
// started repeating is released once HoldWindow passes without a repeat.
// Before the first repeat arrives the key is held for FirstHoldWindow,
// so a key held past HoldWindow does not produce a release and a second
// press. The cost is that a lone tap stays held until FirstHoldWindow
// passes or another key is pressed; pressing another key more than
// ChordWindow after the tap releases it. Pressing the same key again
// within RetapWindow of its first press is a second tap, not a repeat; a
// second tap slower than that but before FirstHoldWindow passes is read
// as a repeat.
const (
	DefaultHoldWindow      = 90 * time.Millisecond
	DefaultFirstHoldWindow = 500 * time.Millisecond
	DefaultRetapWindow     = 200 * time.Millisecond
	DefaultChordWindow     = 50 * time.Millisecond
)

// KeyTiming configures how a KeyState emulates key releases. Zero fields
// take their defaults.
type KeyTiming struct {
	HoldWindow      time.Duration // release after this long without a repeat
	FirstHoldWindow time.Duration // release a key that never repeated
	RetapWindow     time.Duration // same key pressed again this soon is a new tap
	ChordWindow     time.Duration // keys pressed this close together are a chord
}

func (t KeyTiming) withDefaults() KeyTiming {
	if t.HoldWindow <= 0 {
		t.HoldWindow = DefaultHoldWindow
	}
	if t.FirstHoldWindow <= 0 {
		t.FirstHoldWindow = DefaultFirstHoldWindow
	}
	if t.FirstHoldWindow < t.HoldWindow {
		t.FirstHoldWindow = t.HoldWindow
	}
	if t.RetapWindow <= 0 {
		t.RetapWindow = DefaultRetapWindow
	}
	if t.ChordWindow <= 0 {
		t.ChordWindow = DefaultChordWindow
	}
	return t
}

// KeyMap maps key names as reported by Bubble Tea to controls.
type KeyMap map[string]Button

// DefaultKeyMap is J/K/L for punches, U/I/O for kicks and WASD or the arrow
// keys for directions.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"j":     ButtonLP,
		"k":     ButtonMP,
		"l":     ButtonHP,
		"u":     ButtonLK,
		"i":     ButtonMK,
		"o":     ButtonHK,
		"w":     ButtonUp,
		"a":     ButtonLeft,
		"s":     ButtonDown,
		"d":     ButtonRight,
		"up":    ButtonUp,
		"left":  ButtonLeft,
		"down":  ButtonDown,
		"right": ButtonRight,
	}
}

// Lookup returns the control bound to a key, ignoring case.
func (m KeyMap) Lookup(key string) (Button, bool) {
	b, ok := m[strings.ToLower(key)]
	return b, ok
}

// Edge is what a key press did to the held set.
type Edge int

const (
	EdgeNone    Edge = iota // unmapped key or a repeat
	EdgeChanged             // the held set changed
	EdgeRetap               // a held key was tapped again; report a release first
)

// KeyState tracks which controls are held on a terminal keyboard. See
// KeyTiming for the release rules. Callers treat a Press that returns an
// edge and an Expire that reports true as input edges.
type KeyState struct {
	timing  KeyTiming
	keys    KeyMap
	pressed map[Button]*heldKey
}

type heldKey struct {
	first     time.Time
	last      time.Time
	repeating bool
}

// NewKeyState creates a key state using the given map and timing.
func NewKeyState(keys KeyMap, timing KeyTiming) *KeyState {
	if keys == nil {
		keys = DefaultKeyMap()
	}
	return &KeyState{
		timing:  timing.withDefaults(),
		keys:    keys,
		pressed: make(map[Button]*heldKey),
	}
}

// Timing returns the effective release timing.
func (k *KeyState) Timing() KeyTiming {
	return k.timing
}

// Press records a key press and reports whether the key is mapped and
// which edge it produced.
func (k *KeyState) Press(key string, now time.Time) (bool, Edge) {
	b, ok := k.keys.Lookup(key)
	if !ok {
		return false, EdgeNone
	}

	if h, held := k.pressed[b]; held {
		if !h.repeating && now.Sub(h.first) < k.timing.RetapWindow {
			h.first, h.last = now, now
			return true, EdgeRetap
		}
		h.repeating = true
		h.last = now
		return true, EdgeNone
	}

	// A new key ends earlier taps that are not part of a chord
	for other, h := range k.pressed {
		if !h.repeating && now.Sub(h.first) > k.timing.ChordWindow {
			delete(k.pressed, other)
		}
	}
	k.pressed[b] = &heldKey{first: now, last: now}
	return true, EdgeChanged
}

// Expire releases keys whose hold window passed and reports whether
// anything was released.
func (k *KeyState) Expire(now time.Time) bool {
	changed := false
	for b, h := range k.pressed {
		expired := now.Sub(h.first) >= k.timing.FirstHoldWindow
		if h.repeating {
			expired = now.Sub(h.last) >= k.timing.HoldWindow
		}
		if expired {
			delete(k.pressed, b)
			changed = true
		}
	}
	return changed
}

// Reset releases every key.
func (k *KeyState) Reset() {
	clear(k.pressed)
}

// Buttons returns the controls currently held.
func (k *KeyState) Buttons() Buttons {
	var b Buttons
	for btn := range k.pressed {
		b[btn] = true
	}
	return b
}

// Action resolves the held keys using the keyboard priority table.
func (k *KeyState) Action() core.Action {
	return ActionFromKeys(k.Buttons())
}

// ActionFromKeys resolves held keyboard controls. Any two perpendicular
// directions form a diagonal.
func ActionFromKeys(b Buttons) core.Action {
	return Resolve(b, true)
}
