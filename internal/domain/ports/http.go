package ports

import (
	"time"
)

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UpdateEventType constants
const (
	EventTypeConnected = "connected"
	EventTypeNavigate  = "navigate"
	EventTypeFontSize  = "fontsize"
	EventTypeDeck      = "deck"
	EventTypeClosed    = "closed"
	EventTypeError     = "error"
)
