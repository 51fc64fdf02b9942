package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/redemption-intake/internal/api/dto"
	"github.com/spec-kit/redemption-intake/internal/broadcast"
)

// ActivityHandler streams live server activity to dashboard connections.
type ActivityHandler struct {
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger
}

// NewActivityHandler constructs handler.
func NewActivityHandler(broadcaster *broadcast.Broadcaster, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{broadcaster: broadcaster, logger: logger}
}

// Stream serves one websocket connection: greeting on connect, every
// published event live, and the buffered history on request. All writes go
// through this goroutine; the read loop only forwards signals.
func (h *ActivityHandler) Stream(conn *websocket.Conn) {
	sub := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(sub)

	if err := conn.WriteJSON(dto.ActivityFrame{
		Type:    dto.ActivityFrameGreeting,
		Message: "connected to activity stream",
	}); err != nil {
		return
	}

	historyReq := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req dto.ActivityRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Type == dto.ActivityFrameHistory {
				select {
				case historyReq <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case event, open := <-sub.C:
			if !open {
				return
			}
			if err := conn.WriteJSON(dto.ActivityFrame{Type: dto.ActivityFrameEvent, Event: &event}); err != nil {
				return
			}
		case <-historyReq:
			frame := dto.ActivityFrame{
				Type:   dto.ActivityFrameHistory,
				Events: h.broadcaster.History(),
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
