package domain

import "time"

// MessageSender indicates who authored a message.
type MessageSender string

const (
	MessageSenderUser  MessageSender = "user"
	MessageSenderAdmin MessageSender = "admin"
)

// Message captures one entry in the conversation between a seller and the
// operators. Messages are immutable once created.
type Message struct {
	ID        int64
	UserID    int64
	Content   string
	Sender    MessageSender
	CreatedAt time.Time
}
