package broadcast

import "time"

// Category classifies activity events.
type Category string

const (
	CategoryRequest  Category = "request"
	CategoryResponse Category = "response"
	CategoryInfo     Category = "info"
	CategoryError    Category = "error"
)

// Well-known event origins.
const (
	OriginHTTP   = "http"
	OriginSystem = "system"
)

// LogEvent is one entry of live server activity. Events are ephemeral: they
// live in the broadcaster's ring buffer and in transit to subscribers, and
// are never persisted.
type LogEvent struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Message   string         `json:"message"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Origin    string         `json:"origin"`
}
