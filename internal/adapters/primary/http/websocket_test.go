package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
	"github.com/zorro901/presenotion/internal/domain/services"
)

// dialTestSocket starts the WebSocket handler and returns a connected client
// that has already consumed the connected event
func dialTestSocket(t *testing.T, session *MockSession) (*Server, *websocket.Conn) {
	t.Helper()

	session.On("State").Return(entities.NavigationState{CurrentIndex: 0, SlideCount: 3, IsOpen: true}).Maybe()
	server := NewServer(session, new(MockRenderer), getTestServerConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go server.connMgr.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(server.handleWebSocket))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	var event ports.UpdateEvent
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, ws.ReadJSON(&event))
	require.Equal(t, ports.EventTypeConnected, event.Type)

	return server, ws
}

func TestWebSocketConnect(t *testing.T) {
	server, _ := dialTestSocket(t, new(MockSession))
	assert.Eventually(t, func() bool { return server.connMgr.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketCommands(t *testing.T) {
	t.Run("navigate", func(t *testing.T) {
		session := new(MockSession)
		called := make(chan struct{})
		session.On("Navigate", entities.ActionJump, 2).
			Run(func(mock.Arguments) { close(called) }).
			Return(entities.NavigationState{CurrentIndex: 2, SlideCount: 3, IsOpen: true}, nil)

		_, ws := dialTestSocket(t, session)
		require.NoError(t, ws.WriteJSON(map[string]interface{}{
			"type": MessageNavigate,
			"data": map[string]interface{}{"action": "jump", "index": 2},
		}))

		select {
		case <-called:
		case <-time.After(2 * time.Second):
			t.Fatal("navigate not dispatched")
		}
	})

	t.Run("key", func(t *testing.T) {
		session := new(MockSession)
		called := make(chan struct{})
		session.On("HandleKey", entities.KeyEvent{Key: "3"}).
			Run(func(mock.Arguments) { close(called) }).
			Return(entities.KeyResult{Handled: true, Buffer: "3"}, nil)

		_, ws := dialTestSocket(t, session)
		require.NoError(t, ws.WriteJSON(map[string]interface{}{
			"type": MessageKey,
			"data": map[string]interface{}{"key": "3"},
		}))

		select {
		case <-called:
		case <-time.After(2 * time.Second):
			t.Fatal("key not dispatched")
		}
	})

	t.Run("error goes back to sender", func(t *testing.T) {
		session := new(MockSession)
		session.On("Measure", 10.0, 20.0).Return(0, services.ErrNoSession)

		_, ws := dialTestSocket(t, session)
		require.NoError(t, ws.WriteJSON(map[string]interface{}{
			"type": MessageMeasure,
			"data": map[string]interface{}{"contentHeight": 10, "viewportHeight": 20},
		}))

		var event ports.UpdateEvent
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, ws.ReadJSON(&event))
		assert.Equal(t, ports.EventTypeError, event.Type)

		raw, err := json.Marshal(event.Data)
		require.NoError(t, err)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.Equal(t, "no_session", resp.Error)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, ws := dialTestSocket(t, new(MockSession))
		require.NoError(t, ws.WriteJSON(map[string]interface{}{"type": "dance"}))

		var event ports.UpdateEvent
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, ws.ReadJSON(&event))
		assert.Equal(t, ports.EventTypeError, event.Type)
	})
}

func TestWebSocketClientDisconnect(t *testing.T) {
	server, ws := dialTestSocket(t, new(MockSession))
	require.Eventually(t, func() bool { return server.connMgr.Count() == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(1), server.monitor.Snapshot().WebSocketsOpen)

	require.NoError(t, ws.Close())

	assert.Eventually(t, func() bool { return server.connMgr.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return server.monitor.Snapshot().WebSocketsOpen == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), server.monitor.Snapshot().WebSocketsTotal)
}

func TestIsValidOrigin(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		host   string
		origin string
		want   bool
	}{
		{name: "no origin", host: "127.0.0.1:3000", want: true},
		{name: "same host", host: "127.0.0.1:3000", origin: "http://127.0.0.1:3000", want: true},
		{name: "development localhost", host: "127.0.0.1:3000", origin: "http://localhost:5173", want: true},
		{name: "development remote", host: "127.0.0.1:3000", origin: "https://evil.example", want: false},
		{name: "production whitelisted", env: "production", host: "slides.local", origin: "http://localhost:3000", want: true},
		{name: "production not whitelisted", env: "production", host: "slides.local", origin: "http://localhost:5173", want: false},
		{name: "malformed origin", host: "127.0.0.1:3000", origin: "://bad", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := getTestServerConfig()
			cfg.Environment = tt.env
			server := NewServer(new(MockSession), new(MockRenderer), cfg, nil)

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.want, server.isValidOrigin(req))
		})
	}
}
