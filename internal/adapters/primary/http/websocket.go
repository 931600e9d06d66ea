package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// ClientMessage is a command sent by the host page over the socket. Data
// has the same shape as the matching POST body.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client message types
const (
	MessageNavigate = "navigate"
	MessageKey      = "key"
	MessageMeasure  = "measure"
	MessageResize   = "resize"
	MessageClose    = "close"
)

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan ports.UpdateEvent
	manager *ConnectionManager
	session ports.PresentationSession
	logger  *slog.Logger
	onClose func()
}

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WebSocketClient{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan ports.UpdateEvent, 256),
		manager: s.connMgr,
		session: s.session,
		logger:  s.logger.With("client", conn.RemoteAddr().String()),
	}

	s.connMgr.Register(&Connection{ID: client.id, Send: client.send})
	s.monitor.RecordWebSocketOpen()
	client.onClose = s.monitor.RecordWebSocketClose

	go client.writePump()
	go client.readPump()

	client.reply(ports.EventTypeConnected, map[string]interface{}{
		"clientId": client.id,
		"state":    s.session.State(),
	})
}

// reply queues an event for this client only
func (c *WebSocketClient) reply(eventType string, data interface{}) {
	event := ports.UpdateEvent{Type: eventType, Timestamp: time.Now(), Data: data}
	defer func() {
		// send may already be closed by the manager
		_ = recover()
	}()
	select {
	case c.send <- event:
	default:
	}
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket connection error", "error", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Debug("failed to parse client message", "error", err)
			c.reply(ports.EventTypeError, ErrorResponse{Error: "bad_request", Message: "invalid message"})
			continue
		}

		if err := c.handleCommand(msg); err != nil {
			_, resp := errorStatus(err)
			c.reply(ports.EventTypeError, resp)
		}
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand applies a client command to the session. Results reach the
// client through the session's broadcast events.
func (c *WebSocketClient) handleCommand(msg ClientMessage) error {
	switch msg.Type {
	case MessageNavigate:
		var req NavigateRequest
		if err := decodeData(msg.Data, &req); err != nil {
			return err
		}
		_, err := c.session.Navigate(req.Action, req.Index)
		return err

	case MessageKey:
		var event entities.KeyEvent
		if err := decodeData(msg.Data, &event); err != nil {
			return err
		}
		_, err := c.session.HandleKey(event)
		return err

	case MessageMeasure:
		var req MeasureRequest
		if err := decodeData(msg.Data, &req); err != nil {
			return err
		}
		_, err := c.session.Measure(req.ContentHeight, req.ViewportHeight)
		return err

	case MessageResize:
		var req MeasureRequest
		if err := decodeData(msg.Data, &req); err != nil {
			return err
		}
		return c.session.Resize(req.ContentHeight, req.ViewportHeight)

	case MessageClose:
		return c.session.Close()

	default:
		return fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
}

func decodeData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", errBadRequest)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// same-origin requests carry no Origin header
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("websocket connection rejected: invalid origin URL", "origin", origin, "error", err)
		return false
	}

	if originURL.Host == r.Host {
		return true
	}

	if s.config.IsDevelopment() {
		return isLocalOrigin(originURL)
	}

	for _, allowed := range s.config.GetCORSOrigins() {
		if originURL.String() == allowed {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(originURL.Hostname(), strings.TrimPrefix(allowed, "*")) {
			return true
		}
	}

	s.logger.Warn("websocket connection rejected: origin not in whitelist",
		"origin", originURL.String(),
		"allowed_origins", s.config.GetCORSOrigins())
	return false
}

// isLocalOrigin accepts loopback origins during development
func isLocalOrigin(originURL *url.URL) bool {
	switch originURL.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
