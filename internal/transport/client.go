// Package transport is the WebSocket connection to the game engine.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"

	"github.com/vovakirdan/tui-fighter/internal/protocol"
)

// Defaults for NewClient.
const (
	DefaultWriteTimeout = 5 * time.Second
	DefaultReadLimit    = 16 << 20 // frames are large
	eventBuffer         = 64
	sendBuffer          = 64
)

var (
	// ErrNotConnected is returned by Send while no connection is open.
	ErrNotConnected = errors.New("transport: not connected")
	// ErrSendQueueFull is returned by Send when the writer is backed up.
	ErrSendQueueFull = errors.New("transport: send queue full")
)

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered on Client.Events.
type Event interface {
	transportEvent()
}

// Message carries one decoded inbound message.
type Message struct {
	Event protocol.Event
}

func (Message) transportEvent() {}

// StateChange reports a connection state transition. Err is set for StateError.
type StateChange struct {
	State State
	Err   error
}

func (StateChange) transportEvent() {}

// Client is a WebSocket client for the engine protocol.
// All shared fields are protected by mu.
type Client struct {
	WriteTimeout time.Duration

	mu        sync.RWMutex
	state     State
	lastError error
	conn      *websocket.Conn
	out       chan []byte
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	events chan Event
	logger *log.Logger
}

// NewClient creates a disconnected client.
func NewClient(logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		WriteTimeout: DefaultWriteTimeout,
		state:        StateDisconnected,
		events:       make(chan Event, eventBuffer),
		logger:       logger,
	}
}

// Connect dials url and starts the read and write loops. ctx bounds the
// dial only; the connection lives until Close or a network error.
func (c *Client) Connect(ctx context.Context, url string) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return fmt.Errorf("transport: already %s", c.state)
	}
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()
	c.emit(StateChange{State: StateConnecting})

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		err = fmt.Errorf("transport: dial %s: %w", url, err)
		c.setError(err)
		return err
	}
	conn.SetReadLimit(DefaultReadLimit)

	loopCtx, cancel := context.WithCancel(context.Background())
	out := make(chan []byte, sendBuffer)

	c.mu.Lock()
	c.conn = conn
	c.out = out
	c.cancel = cancel
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("connected", "url", url)
	c.emit(StateChange{State: StateConnected})

	c.wg.Add(2)
	go c.readLoop(loopCtx, conn)
	go c.writeLoop(loopCtx, conn, out)
	return nil
}

// Send encodes cmd and queues it without blocking.
func (c *Client) Send(cmd protocol.Command) error {
	payload, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateConnected {
		return ErrNotConnected
	}
	select {
	case c.out <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Events returns the stream of inbound messages and state changes.
func (c *Client) Events() <-chan Event {
	return c.events
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LastError returns the error that moved the client to StateError.
func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Close closes the connection and waits for the loops to exit.
// Safe to call multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	conn, cancel := c.conn, c.cancel
	c.conn, c.cancel = nil, nil
	if conn == nil {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.mu.Unlock()

	if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		c.logger.Debug("close handshake", "err", err)
	}
	cancel()
	c.wg.Wait()
	c.emit(StateChange{State: StateClosed})
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			c.fail("read", conn, err)
			return
		}

		mt := protocol.MessageText
		if typ == websocket.MessageBinary {
			mt = protocol.MessageBinary
		}
		ev, err := protocol.Decode(mt, data)
		if err != nil {
			c.logger.Warn("dropping inbound message", "err", err)
			continue
		}
		c.emit(Message{Event: ev})
	}
}

// fail tears down a connection after a read or write error. Only the first
// failure of a connection is reported.
func (c *Client) fail(op string, conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.state == StateClosed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if op == "read" && websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.logger.Info("disconnected")
		c.emit(StateChange{State: StateDisconnected})
		return
	}
	c.mu.Unlock()
	_ = conn.CloseNow()
	c.setError(fmt.Errorf("transport: %s: %w", op, err))
}

func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan []byte) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-out:
			wctx, cancel := context.WithTimeout(ctx, c.WriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					c.fail("write", conn, err)
				}
				return
			}
		}
	}
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
	c.logger.Error("connection error", "err", err)
	c.emit(StateChange{State: StateError, Err: err})
}

// emit delivers an event, dropping the oldest one if the buffer is full.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
		return
	default:
	}
	select {
	case <-c.events:
	default:
	}
	select {
	case c.events <- ev:
	default:
	}
}
