package config

// DifficultyPreset is an engine AI difficulty level sent in start_game.
type DifficultyPreset string

const (
	DifficultyBasic    DifficultyPreset = "basic"
	DifficultyAdvanced DifficultyPreset = "advanced"
	DifficultyExpert   DifficultyPreset = "expert"
)

// Presets lists the difficulty levels in menu order.
var Presets = []DifficultyPreset{DifficultyBasic, DifficultyAdvanced, DifficultyExpert}

// Valid reports whether p is a known preset.
func (p DifficultyPreset) Valid() bool {
	for _, q := range Presets {
		if p == q {
			return true
		}
	}
	return false
}

// Next cycles to the following preset, wrapping around.
func (p DifficultyPreset) Next() DifficultyPreset {
	for i, q := range Presets {
		if p == q {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return DifficultyBasic
}

// Description returns a short label for menus.
func (p DifficultyPreset) Description() string {
	switch p {
	case DifficultyBasic:
		return "Basic - the opponent reacts slowly"
	case DifficultyAdvanced:
		return "Advanced - the opponent blocks and punishes"
	case DifficultyExpert:
		return "Expert - the opponent plays to win"
	default:
		return string(p)
	}
}
