// Package movedata holds the per-character combo and super-art tables served
// by the engine, decoded in source order from JSON or YAML.
package movedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// ErrMissingFacing is returned when a move has no sequence for the requested facing.
var ErrMissingFacing = errors.New("movedata: missing facing")

// ExtraMoves is the payload of GET /api/extra-moves.
type ExtraMoves struct {
	Combos       map[string]MoveSet `json:"combos" yaml:"combos"`
	SpecialMoves map[string]MoveSet `json:"special_moves" yaml:"special_moves"`
}

// Move is one named entry of a character's combo or special-move table.
type Move struct {
	Key       string
	Sequences Sequences
}

// MoveSet is a character's move table in source order.
type MoveSet []Move

// Sequences holds the pre-mirrored input sequence for each facing.
// A nil slice means the facing is absent from the source data.
type Sequences struct {
	Left  ActionList `json:"left" yaml:"left"`
	Right ActionList `json:"right" yaml:"right"`
}

// For returns the sequence stored for the given facing.
func (s Sequences) For(f core.Facing) ([]core.Action, error) {
	seq := s.Right
	if f == core.FacingLeft {
		seq = s.Left
	}
	if seq == nil {
		return nil, fmt.Errorf("%w %s", ErrMissingFacing, f)
	}
	return seq, nil
}

// ActionList is a sequence of actions that decodes from indices or names.
type ActionList []core.Action

// Characters returns every character present in either table, sorted.
func (em *ExtraMoves) Characters() []string {
	if em == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(em.Combos)+len(em.SpecialMoves))
	for c := range em.Combos {
		seen[c] = struct{}{}
	}
	for c := range em.SpecialMoves {
		seen[c] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for c := range seen {
		result = append(result, c)
	}
	sort.Strings(result)
	return result
}

// HasCharacter reports whether the character has any move data.
func (em *ExtraMoves) HasCharacter(character string) bool {
	if em == nil {
		return false
	}
	_, inCombos := em.Combos[character]
	_, inSpecial := em.SpecialMoves[character]
	return inCombos || inSpecial
}

// Get returns the move with the given key, if present.
func (ms MoveSet) Get(key string) (Move, bool) {
	for _, m := range ms {
		if m.Key == key {
			return m, true
		}
	}
	return Move{}, false
}

// Keys returns the move keys in source order.
func (ms MoveSet) Keys() []string {
	keys := make([]string, len(ms))
	for i, m := range ms {
		keys[i] = m.Key
	}
	return keys
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (ms *MoveSet) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("movedata: expected object, got %v", tok)
	}

	var result MoveSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("movedata: expected key, got %v", tok)
		}
		var seq Sequences
		if err := dec.Decode(&seq); err != nil {
			return fmt.Errorf("movedata: move %q: %w", key, err)
		}
		result = append(result, Move{Key: key, Sequences: seq})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*ms = result
	return nil
}

// UnmarshalYAML decodes a YAML mapping while keeping its key order.
func (ms *MoveSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("movedata: line %d: expected mapping", node.Line)
	}

	result := make(MoveSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var seq Sequences
		if err := node.Content[i+1].Decode(&seq); err != nil {
			return fmt.Errorf("movedata: move %q: %w", key, err)
		}
		result = append(result, Move{Key: key, Sequences: seq})
	}

	*ms = result
	return nil
}

// UnmarshalJSON accepts both [9, 10] and ["Low Punch", "Medium Punch"].
func (l *ActionList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	result := make(ActionList, 0, len(raw))
	for _, r := range raw {
		var n int
		if err := json.Unmarshal(r, &n); err == nil {
			result = append(result, core.Action(n))
			continue
		}
		var name string
		if err := json.Unmarshal(r, &name); err != nil {
			return fmt.Errorf("movedata: invalid action %s", r)
		}
		a, err := core.ParseAction(name)
		if err != nil {
			return err
		}
		result = append(result, a)
	}
	*l = result
	return nil
}

// UnmarshalYAML accepts both index and name scalars.
func (l *ActionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("movedata: line %d: expected sequence", node.Line)
	}
	result := make(ActionList, 0, len(node.Content))
	for _, item := range node.Content {
		if n, err := strconv.Atoi(item.Value); err == nil {
			result = append(result, core.Action(n))
			continue
		}
		a, err := core.ParseAction(item.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		result = append(result, a)
	}
	*l = result
	return nil
}

// MarshalJSON encodes the list as engine indices.
func (l ActionList) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(l))
	for i, a := range l {
		ints[i] = int(a)
	}
	return json.Marshal(ints)
}
