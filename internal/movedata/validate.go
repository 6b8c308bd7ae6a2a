package movedata

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// Table names used in problem reports.
const (
	TableCombos       = "combos"
	TableSpecialMoves = "special_moves"
)

// Problem describes one malformed entry in the move data.
type Problem struct {
	Table     string
	Character string
	Key       string
	Reason    string
}

func (p Problem) Error() string {
	return fmt.Sprintf("movedata: %s[%s][%q]: %s", p.Table, p.Character, p.Key, p.Reason)
}

// SpecialKey is a parsed super-art key.
type SpecialKey struct {
	Slot int    // 0 for an unconditional Max variant
	Max  bool   // enhanced variant
	Name string // display part of the key
}

var specialKeyRe = regexp.MustCompile(`^(?:(\d+)|Max-(\d+)|(Max)) (.+)$`)

// ParseSpecialKey parses "<N> name", "Max-<N> name" or "Max name".
func ParseSpecialKey(key string) (SpecialKey, bool) {
	m := specialKeyRe.FindStringSubmatch(key)
	if m == nil {
		return SpecialKey{}, false
	}
	switch {
	case m[1] != "":
		n, _ := strconv.Atoi(m[1])
		return SpecialKey{Slot: n, Name: m[4]}, true
	case m[2] != "":
		n, _ := strconv.Atoi(m[2])
		return SpecialKey{Slot: n, Max: true, Name: m[4]}, true
	default:
		return SpecialKey{Max: true, Name: m[4]}, true
	}
}

// Validate returns every malformed entry, ordered by table, character and
// source position. A plain-numbered super art may appear at most once per
// slot; later duplicates are reported.
func Validate(em *ExtraMoves) []Problem {
	if em == nil {
		return nil
	}
	var problems []Problem
	walk(em, func(p Problem) { problems = append(problems, p) }, nil)
	return problems
}

// Sanitize returns a copy of em without the entries Validate rejects,
// logging each dropped entry. One bad character never removes another
// character's data.
func Sanitize(em *ExtraMoves, logger *log.Logger) *ExtraMoves {
	out := &ExtraMoves{
		Combos:       make(map[string]MoveSet),
		SpecialMoves: make(map[string]MoveSet),
	}
	if em == nil {
		return out
	}
	if logger == nil {
		logger = log.Default()
	}

	walk(em, func(p Problem) {
		logger.Warn("dropping malformed move",
			"table", p.Table, "character", p.Character, "key", p.Key, "reason", p.Reason)
	}, func(table, character string, m Move) {
		dst := out.Combos
		if table == TableSpecialMoves {
			dst = out.SpecialMoves
		}
		dst[character] = append(dst[character], m)
	})

	// Keep characters whose every entry was dropped so that selection still
	// resolves to an empty contribution rather than "unknown character".
	for c := range em.Combos {
		if _, ok := out.Combos[c]; !ok {
			out.Combos[c] = MoveSet{}
		}
	}
	for c := range em.SpecialMoves {
		if _, ok := out.SpecialMoves[c]; !ok {
			out.SpecialMoves[c] = MoveSet{}
		}
	}
	return out
}

// walk checks every entry in deterministic order, calling reject for bad
// entries and keep (if non-nil) for good ones.
func walk(em *ExtraMoves, reject func(Problem), keep func(table, character string, m Move)) {
	for _, character := range sortedKeys(em.Combos) {
		for _, m := range em.Combos[character] {
			if reason := checkSequences(m.Sequences); reason != "" {
				reject(Problem{TableCombos, character, m.Key, reason})
				continue
			}
			if keep != nil {
				keep(TableCombos, character, m)
			}
		}
	}

	for _, character := range sortedKeys(em.SpecialMoves) {
		plainSlots := make(map[int]string)
		for _, m := range em.SpecialMoves[character] {
			sk, ok := ParseSpecialKey(m.Key)
			if !ok {
				reject(Problem{TableSpecialMoves, character, m.Key, "key does not follow the slot prefix convention"})
				continue
			}
			if reason := checkSequences(m.Sequences); reason != "" {
				reject(Problem{TableSpecialMoves, character, m.Key, reason})
				continue
			}
			if !sk.Max {
				if first, dup := plainSlots[sk.Slot]; dup {
					reject(Problem{TableSpecialMoves, character, m.Key,
						fmt.Sprintf("slot %d already has %q", sk.Slot, first)})
					continue
				}
				plainSlots[sk.Slot] = m.Key
			}
			if keep != nil {
				keep(TableSpecialMoves, character, m)
			}
		}
	}
}

func checkSequences(s Sequences) string {
	for _, f := range []core.Facing{core.FacingLeft, core.FacingRight} {
		seq, err := s.For(f)
		if err != nil {
			return err.Error()
		}
		if len(seq) == 0 {
			return fmt.Sprintf("empty %s sequence", f)
		}
		for _, a := range seq {
			if !a.IsInput() {
				return fmt.Sprintf("action %d out of range in %s sequence", int(a), f)
			}
		}
	}
	return ""
}

func sortedKeys(m map[string]MoveSet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
