package dto

import (
	"time"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse represents one conversation entry.
type MessageResponse struct {
	ID        int64                `json:"id"`
	UserID    int64                `json:"user_id"`
	Content   string               `json:"content"`
	Sender    domain.MessageSender `json:"sender"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		UserID:    msg.UserID,
		Content:   msg.Content,
		Sender:    msg.Sender,
		CreatedAt: msg.CreatedAt,
	}
}

// NewMessageListResponse maps a slice of messages preserving order.
func NewMessageListResponse(msgs []domain.Message) []MessageResponse {
	items := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, NewMessageResponse(&msgs[i]))
	}
	return items
}
