// Package moves recognizes combos and super arts in a stream of inputs.
// Compile builds a length-bucketed table for the current character, super-art
// slot and facing; Detect matches the most recent inputs against it.
package moves

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/movedata"
)

// MoveType distinguishes the two kinds of recognized move.
type MoveType int

const (
	TypeSuperArt MoveType = iota
	TypeCombo
)

// String returns a human-readable name for the move type.
func (t MoveType) String() string {
	switch t {
	case TypeSuperArt:
		return "Super Art"
	case TypeCombo:
		return "Combo"
	default:
		return "Unknown"
	}
}

// Action returns the meta action reported to the engine for this type.
func (t MoveType) Action() core.Action {
	if t == TypeSuperArt {
		return core.SuperArt
	}
	return core.Combo
}

// Descriptor is one candidate move in a compiled table.
type Descriptor struct {
	Type     MoveType
	Name     string // combo name, or the full super-art key
	Sequence []core.Action
}

// Table maps sequence length to candidate moves. Within a bucket every
// super art precedes every combo. The zero Table is empty.
type Table struct {
	buckets map[int][]Descriptor
}

// InSlot reports whether a super-art key is available with the given slot
// selected: "<slot> ..." and "Max-<slot> ..." are gated, "Max ..." is not.
func InSlot(key string, slot int) bool {
	n := strconv.Itoa(slot)
	return strings.HasPrefix(key, n+" ") ||
		strings.HasPrefix(key, "Max-"+n+" ") ||
		strings.HasPrefix(key, "Max ")
}

// Compile builds the move table for a character. A nil data set or an empty
// character yields an empty table. A character missing from one of the two
// tables gets no entries from it; the other still contributes. Entries
// without a sequence for the facing are skipped.
func Compile(character string, data *movedata.ExtraMoves, facing core.Facing, slot int) Table {
	t := Table{buckets: make(map[int][]Descriptor)}
	if data == nil || character == "" {
		return t
	}
	for _, m := range data.SpecialMoves[character] {
		if !InSlot(m.Key, slot) {
			continue
		}
		t.add(TypeSuperArt, character, m, facing)
	}
	for _, m := range data.Combos[character] {
		t.add(TypeCombo, character, m, facing)
	}

	for n, bucket := range t.buckets {
		slices.SortStableFunc(bucket, func(a, b Descriptor) int {
			return int(a.Type) - int(b.Type)
		})
		t.buckets[n] = bucket
	}
	return t
}

func (t *Table) add(typ MoveType, character string, m movedata.Move, facing core.Facing) {
	seq, err := m.Sequences.For(facing)
	if err != nil {
		log.Warn("skipping move", "character", character, "move", m.Key, "err", err)
		return
	}
	n := len(seq)
	t.buckets[n] = append(t.buckets[n], Descriptor{
		Type:     typ,
		Name:     m.Key,
		Sequence: slices.Clone(seq),
	})
}

// Buckets returns the candidates of length n in match order.
func (t Table) Buckets(n int) []Descriptor {
	return t.buckets[n]
}

// Lengths returns the populated bucket lengths, longest first.
func (t Table) Lengths() []int {
	lengths := make([]int, 0, len(t.buckets))
	for n, b := range t.buckets {
		if len(b) > 0 {
			lengths = append(lengths, n)
		}
	}
	slices.Sort(lengths)
	slices.Reverse(lengths)
	return lengths
}

// Len returns the total number of candidates.
func (t Table) Len() int {
	total := 0
	for _, b := range t.buckets {
		total += len(b)
	}
	return total
}

// Moves returns every candidate in the order Detect would try them.
func (t Table) Moves() []Descriptor {
	result := make([]Descriptor, 0, t.Len())
	for _, n := range t.Lengths() {
		result = append(result, t.buckets[n]...)
	}
	return result
}
