package input

import (
	"bufio"
	"context"
	"io"
	"math"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/vovakirdan/tui-fighter/internal/core"
)

// DefaultGamepadThreshold is the stick dead zone used during play.
const DefaultGamepadThreshold = 0.25

// Standard-mapping button indices.
const (
	PadLP        = 0
	PadMP        = 1
	PadLK        = 2
	PadMK        = 3
	PadHK        = 4
	PadHP        = 5
	PadDPadUp    = 12
	PadDPadDown  = 13
	PadDPadLeft  = 14
	PadDPadRight = 15

	NumPadButtons = 16
)

// GamepadState is one snapshot of a standard-mapping gamepad.
type GamepadState struct {
	Connected bool
	LeftX     float64 // -1 left .. 1 right
	LeftY     float64 // -1 up .. 1 down
	Buttons   [NumPadButtons]bool
}

// Controls maps the snapshot to device-independent controls. The stick
// counts in a direction once it passes threshold; the d-pad always counts.
func (s GamepadState) Controls(threshold float64) Buttons {
	var b Buttons
	b[ButtonLeft] = s.LeftX < -threshold || s.Buttons[PadDPadLeft]
	b[ButtonRight] = s.LeftX > threshold || s.Buttons[PadDPadRight]
	b[ButtonUp] = s.LeftY < -threshold || s.Buttons[PadDPadUp]
	b[ButtonDown] = s.LeftY > threshold || s.Buttons[PadDPadDown]
	b[ButtonLP] = s.Buttons[PadLP]
	b[ButtonMP] = s.Buttons[PadMP]
	b[ButtonHP] = s.Buttons[PadHP]
	b[ButtonLK] = s.Buttons[PadLK]
	b[ButtonMK] = s.Buttons[PadMK]
	b[ButtonHK] = s.Buttons[PadHK]
	return b
}

// ActionFromGamepad resolves a gamepad snapshot. Diagonals come only from
// the stick, when both axes are past threshold; two d-pad directions fall
// back to the cardinal order.
func ActionFromGamepad(s GamepadState, threshold float64) core.Action {
	diagonal := math.Abs(s.LeftX) > threshold && math.Abs(s.LeftY) > threshold
	return Resolve(s.Controls(threshold), diagonal)
}

// GamepadSource supplies gamepad snapshots to the poller.
type GamepadSource interface {
	State(ctx context.Context) (GamepadState, error)
}

// StreamSource reads gamepad snapshots as newline-delimited JSON, e.g. from
// a FIFO written by a device bridge:
//
//	{"connected":true,"axes":[0.0,-0.9],"buttons":[true,false,...]}
//
// State returns the most recent snapshot read.
type StreamSource struct {
	mu   sync.RWMutex
	last GamepadState
	err  error
	done chan struct{}
}

// NewStreamSource starts reading from r until EOF.
func NewStreamSource(r io.Reader) *StreamSource {
	s := &StreamSource{done: make(chan struct{})}
	go s.read(r)
	return s
}

func (s *StreamSource) read(r io.Reader) {
	defer close(s.done)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()
		if !gjson.ValidBytes(line) {
			continue
		}
		state := ParseGamepadState(line)
		s.mu.Lock()
		s.last = state
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = sc.Err()
	if s.err == nil {
		s.err = io.EOF
	}
	s.last = GamepadState{}
}

// ParseGamepadState decodes one JSON snapshot. Missing fields read as zero;
// "connected" defaults to true.
func ParseGamepadState(line []byte) GamepadState {
	res := gjson.ParseBytes(line)
	state := GamepadState{Connected: true}
	if c := res.Get("connected"); c.Exists() {
		state.Connected = c.Bool()
	}
	state.LeftX = res.Get("axes.0").Float()
	state.LeftY = res.Get("axes.1").Float()
	res.Get("buttons").ForEach(func(key, value gjson.Result) bool {
		i := int(key.Int())
		if i >= NumPadButtons {
			return false
		}
		if value.Type == gjson.Number {
			state.Buttons[i] = value.Float() > 0.5 // analog trigger
		} else {
			state.Buttons[i] = value.Bool()
		}
		return true
	})
	return state
}

// State implements GamepadSource. After the stream ends it returns a
// disconnected snapshot and the read error (io.EOF on a clean end).
func (s *StreamSource) State(ctx context.Context) (GamepadState, error) {
	if err := ctx.Err(); err != nil {
		return GamepadState{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.err
}

// Done is closed when the stream has ended.
func (s *StreamSource) Done() <-chan struct{} {
	return s.done
}
