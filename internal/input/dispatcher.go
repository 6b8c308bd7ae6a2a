package input

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/moves"
	"github.com/vovakirdan/tui-fighter/internal/protocol"
	"github.com/vovakirdan/tui-fighter/internal/transport"
)

// DefaultComboTimeout is the window within which a move's inputs must land.
const DefaultComboTimeout = 750 * time.Millisecond

// Sender delivers commands to the engine. Send must not block.
type Sender interface {
	Send(cmd protocol.Command) error
}

// Detection is a recognized move.
type Detection struct {
	Match moves.Match
	Time  time.Time
}

// Observer is notified of every detection, after the report is sent.
type Observer func(Detection)

// Dispatcher feeds input actions through the recognizer and reports them.
//
// Keyboard and gamepad run on separate goroutines; the mutex makes each
// append-detect-report step atomic, so reports for one input are never
// interleaved with another's.
type Dispatcher struct {
	mu        sync.Mutex
	timeout   time.Duration
	history   *moves.History
	table     moves.Table
	sender    Sender
	observers []Observer
	last      core.Action
	gamepad   bool
	logger    *log.Logger
}

// NewDispatcher creates a dispatcher. A nil sender runs offline: moves are
// still recognized and observed, nothing is sent.
func NewDispatcher(sender Sender, timeout time.Duration, historyLimit int, logger *log.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultComboTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		timeout: timeout,
		history: moves.NewHistory(historyLimit),
		sender:  sender,
		logger:  logger,
	}
}

// SetSender replaces the command sink.
func (d *Dispatcher) SetSender(s Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sender = s
}

// Observe registers an observer.
func (d *Dispatcher) Observe(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// SetTable installs a freshly compiled move table. The history is kept.
func (d *Dispatcher) SetTable(t moves.Table) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table = t
}

// Table returns the current move table.
func (d *Dispatcher) Table() moves.Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table
}

// ResetHistory discards buffered inputs.
func (d *Dispatcher) ResetHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history.Clear()
}

// History returns a snapshot of buffered inputs for display.
func (d *Dispatcher) History() []core.InputEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Events()
}

// LastAction returns the most recently handled action.
func (d *Dispatcher) LastAction() core.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Handle processes one input edge. The raw action is always reported;
// anything but NoMove is also recorded and matched, and a recognized move
// is reported after the raw action. It returns the recognized move, if any.
func (d *Dispatcher) Handle(a core.Action, now time.Time) *moves.Match {
	d.mu.Lock()
	d.last = a
	d.send(protocol.PlayerAction{Action: a})

	if a == core.NoMove {
		d.mu.Unlock()
		return nil
	}

	d.history.Append(core.NewInputEvent(a, now))
	res := moves.Detect(d.history.Events(), d.timeout, d.table, now)
	d.history.Replace(res.Remaining)

	if !res.Matched() {
		d.mu.Unlock()
		return nil
	}

	m := *res.Match
	report := protocol.PlayerAction{Action: m.Type.Action()}
	if m.Type == moves.TypeSuperArt {
		report.SuperArt = m.Name
	} else {
		report.Combo = m.Name
	}
	d.send(report)
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()

	d.logger.Debug("move detected", "type", m.Type, "name", m.Name)
	det := Detection{Match: m, Time: now}
	for _, o := range observers {
		o(det)
	}
	return &m
}

// send must be called with d.mu held.
func (d *Dispatcher) send(cmd protocol.Command) {
	if d.sender == nil {
		return
	}
	err := d.sender.Send(cmd)
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrNotConnected):
		d.logger.Debug("send skipped", "type", cmd.Type(), "err", err)
	default:
		d.logger.Warn("send failed", "type", cmd.Type(), "err", err)
	}
}

// SetGamepadConnected reports a gamepad attach or detach to the engine.
func (d *Dispatcher) SetGamepadConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gamepad == connected {
		return
	}
	d.gamepad = connected
	d.send(protocol.GamepadStatus{Connected: connected})
}

// GamepadConnected reports the last known gamepad state.
func (d *Dispatcher) GamepadConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gamepad
}

// PollGamepad samples src every interval and handles the resolved action
// whenever it changes. It returns nil when ctx is cancelled or the source
// ends cleanly.
func (d *Dispatcher) PollGamepad(ctx context.Context, src GamepadSource, interval time.Duration, threshold float64) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	if threshold <= 0 {
		threshold = DefaultGamepadThreshold
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := core.NoMove
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			state, err := src.State(ctx)
			if err != nil {
				if last != core.NoMove {
					d.Handle(core.NoMove, now)
				}
				d.SetGamepadConnected(false)
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			d.SetGamepadConnected(state.Connected)
			action := core.NoMove
			if state.Connected {
				action = ActionFromGamepad(state, threshold)
			}
			if action != last {
				last = action
				d.Handle(action, now)
			}
		}
	}
}
