package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-fighter/internal/core"
	"github.com/vovakirdan/tui-fighter/internal/protocol"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transport event")
		return nil
	}
}

func TestClientRoundTrip(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		received <- string(data)

		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"type":"game_state","data":{"status":"running","scores":[0,0]}}`))
		_ = conn.Write(ctx, websocket.MessageBinary, []byte{1, 2, 3})
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer srv.Close()

	c := NewClient(nil)
	require.ErrorIs(t, c.Send(protocol.PlayerAction{Action: core.Left}), ErrNotConnected)

	require.NoError(t, c.Connect(context.Background(), wsURL(srv)))
	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, StateChange{State: StateConnecting}, nextEvent(t, c))
	assert.Equal(t, StateChange{State: StateConnected}, nextEvent(t, c))

	require.NoError(t, c.Send(protocol.PlayerAction{Action: core.Combo, Combo: "Target Combo"}))
	select {
	case msg := <-received:
		assert.Equal(t, `{"type":"player_action","data":{"action":19,"combo":"Target Combo"}}`, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive the message")
	}

	assert.Equal(t, Message{Event: protocol.GameState{Status: protocol.StatusRunning}}, nextEvent(t, c))
	assert.Equal(t, Message{Event: protocol.Frame{Data: []byte{1, 2, 3}}}, nextEvent(t, c))
	assert.Equal(t, StateChange{State: StateDisconnected}, nextEvent(t, c))
	assert.Equal(t, StateDisconnected, c.State())

	c.Close()
}

func TestClientWriteFailureMarksError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewClient(nil)
	c.WriteTimeout = time.Nanosecond
	require.NoError(t, c.Connect(context.Background(), wsURL(srv)))
	defer c.Close()
	assert.Equal(t, StateChange{State: StateConnecting}, nextEvent(t, c))
	assert.Equal(t, StateChange{State: StateConnected}, nextEvent(t, c))

	require.NoError(t, c.Send(protocol.PlayerAction{Action: core.Left}))

	ev, ok := nextEvent(t, c).(StateChange)
	require.True(t, ok)
	assert.Equal(t, StateError, ev.State)
	assert.ErrorContains(t, ev.Err, "transport: write")
	assert.Equal(t, StateError, c.State())
	assert.ErrorIs(t, c.Send(protocol.PlayerAction{Action: core.Right}), ErrNotConnected)

	select {
	case ev := <-c.Events():
		t.Fatalf("failure reported twice: %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewClient(nil)
	require.NoError(t, c.Connect(context.Background(), wsURL(srv)))
	require.Error(t, c.Connect(context.Background(), wsURL(srv)), "second connect while connected")

	c.Close()
	c.Close()
	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.Send(protocol.GamepadStatus{Connected: true}), ErrNotConnected)
}

func TestClientDialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Connect(ctx, wsURL(srv))
	require.Error(t, err)
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, err, c.LastError())
}

func TestSendRejectsInvalidCommand(t *testing.T) {
	c := NewClient(nil)
	err := c.Send(protocol.PlayerAction{Action: core.SuperArt})
	assert.ErrorIs(t, err, protocol.ErrInvalidCommand)
}
