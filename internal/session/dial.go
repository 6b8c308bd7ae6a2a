package session

import (
	"context"

	"github.com/vovakirdan/tui-fighter/internal/transport"
)

// Dial connects a transport client to the engine at url and attaches it:
// commands go out through it and its events are applied to the session
// until Close.
func (s *Session) Dial(ctx context.Context, url string) (*transport.Client, error) {
	c := transport.NewClient(s.logger)
	if err := c.Connect(ctx, url); err != nil {
		return nil, err
	}
	s.SetSender(c)

	pumpCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Pump(pumpCtx, c.Events())
	}()
	s.OnClose(func() {
		cancel()
		<-done
		c.Close()
	})
	return c, nil
}
