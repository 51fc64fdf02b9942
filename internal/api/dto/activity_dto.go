package dto

import "github.com/spec-kit/redemption-intake/internal/broadcast"

// Activity frame types on the realtime channel.
const (
	ActivityFrameGreeting = "greeting"
	ActivityFrameEvent    = "event"
	ActivityFrameHistory  = "history"
)

// ActivityRequest is the single client-to-server signal.
type ActivityRequest struct {
	Type string `json:"type"`
}

// ActivityFrame is one server-to-client message on the activity stream.
type ActivityFrame struct {
	Type    string               `json:"type"`
	Message string               `json:"message,omitempty"`
	Event   *broadcast.LogEvent  `json:"event,omitempty"`
	Events  []broadcast.LogEvent `json:"events,omitempty"`
}
