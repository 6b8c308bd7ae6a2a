package session

import "sync"

// Channel is a buffered event stream that never blocks the sender.
// Used by the TUI layer to receive session events from input and network
// goroutines.
type Channel struct {
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannel creates a new event channel.
// bufferSize controls how many events can be buffered before dropping.
func NewChannel(bufferSize int) *Channel {
	if bufferSize < 1 {
		bufferSize = 64 // Default buffer size
	}
	return &Channel{
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send delivers an event.
// If the buffer is full, old events are dropped to prevent blocking.
func (c *Channel) Send(evt Event) {
	select {
	case <-c.done:
		// Closed, don't send
		return
	default:
	}

	select {
	case c.events <- evt:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-c.events:
		default:
		}
		// Try again (best effort)
		select {
		case c.events <- evt:
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Done returns a channel that closes when the stream ends.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Close marks the stream as done.
// Safe to call multiple times.
func (c *Channel) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Registry tracks live sessions.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	sessions map[ID]*Session
}

// NewRegistry creates a new session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[ID]*Session),
	}
}

// Register adds a session to the registry.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Unregister removes a session from the registry.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *Registry) Get(id ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every registered session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[ID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
