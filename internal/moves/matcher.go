package moves

import (
	"time"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// MinSequenceLength is the shortest sequence Detect will match. A single
// press is never promoted to a move.
const MinSequenceLength = 2

// Match identifies a recognized move.
type Match struct {
	Type MoveType
	Name string
}

// Result is the outcome of one Detect call.
type Result struct {
	Match     *Match            // nil when nothing matched
	Remaining []core.InputEvent // new history: trimmed on a miss, empty on a match
}

// Matched reports whether a move was recognized.
func (r Result) Matched() bool {
	return r.Match != nil
}

// Detect drops events older than timeout and then looks for the longest
// move ending at the most recent input. At equal length the table order
// decides, so super arts win over combos. A match clears the whole history.
func Detect(history []core.InputEvent, timeout time.Duration, table Table, now time.Time) Result {
	filtered := make([]core.InputEvent, 0, len(history))
	for _, ev := range history {
		if now.Sub(ev.Time) <= timeout {
			filtered = append(filtered, ev)
		}
	}
	if len(filtered) < MinSequenceLength {
		return Result{Remaining: filtered}
	}

	for n := len(filtered); n >= MinSequenceLength; n-- {
		bucket := table.Buckets(n)
		if len(bucket) == 0 {
			continue
		}
		window := filtered[len(filtered)-n:]
		for _, d := range bucket {
			if sequenceEqual(window, d.Sequence) {
				return Result{
					Match:     &Match{Type: d.Type, Name: d.Name},
					Remaining: []core.InputEvent{},
				}
			}
		}
	}
	return Result{Remaining: filtered}
}

func sequenceEqual(window []core.InputEvent, seq []core.Action) bool {
	if len(window) != len(seq) {
		return false
	}
	for i, ev := range window {
		if ev.Action != seq[i] {
			return false
		}
	}
	return true
}
