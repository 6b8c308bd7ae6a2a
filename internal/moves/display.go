package moves

import (
	"regexp"
	"strings"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
)

var (
	plainPrefix = regexp.MustCompile(`^\d+ `)
	maxPrefix   = regexp.MustCompile(`^Max-\d+ `)
)

// DisplayName strips the slot prefix from a super-art key:
// "1 Shoryu-Reppa" becomes "Shoryu-Reppa", "Max-1 X" becomes "Max X".
// Combo names and "Max ..." keys are returned unchanged.
func DisplayName(key string) string {
	switch {
	case plainPrefix.MatchString(key):
		return plainPrefix.ReplaceAllString(key, "")
	case maxPrefix.MatchString(key):
		return maxPrefix.ReplaceAllString(key, "Max ")
	default:
		return key
	}
}

// FormatSequence renders a sequence as space-separated glyphs.
func FormatSequence(seq []core.Action, gamepad bool) string {
	parts := make([]string, 0, len(seq))
	for _, a := range seq {
		if g := a.Glyph(gamepad); g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}

// Row is one line of the moves overlay.
type Row struct {
	Type     MoveType
	Key      string
	Name     string // display name
	Sequence []core.Action
}

// Listing is the moves overlay for one character, slot and facing.
type Listing struct {
	Character string
	SuperArts []Row
	Combos    []Row
}

// Len returns the number of rows.
func (l Listing) Len() int {
	return len(l.SuperArts) + len(l.Combos)
}

// BuildListing collects the rows for the overlay using the same slot rule
// as Compile. Plain-numbered super arts come before Max variants; combos
// keep source order.
func BuildListing(character string, data *movedata.ExtraMoves, facing core.Facing, slot int) Listing {
	l := Listing{Character: character}
	if data == nil || character == "" {
		return l
	}

	var plain, enhanced []Row
	for _, m := range data.SpecialMoves[character] {
		if !InSlot(m.Key, slot) {
			continue
		}
		seq, err := m.Sequences.For(facing)
		if err != nil {
			continue
		}
		row := Row{Type: TypeSuperArt, Key: m.Key, Name: DisplayName(m.Key), Sequence: seq}
		if strings.HasPrefix(m.Key, "Max") {
			enhanced = append(enhanced, row)
		} else {
			plain = append(plain, row)
		}
	}
	l.SuperArts = append(plain, enhanced...)

	for _, m := range data.Combos[character] {
		seq, err := m.Sequences.For(facing)
		if err != nil {
			continue
		}
		l.Combos = append(l.Combos, Row{Type: TypeCombo, Key: m.Key, Name: m.Key, Sequence: seq})
	}
	return l
}
