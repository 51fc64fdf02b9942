package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/redemption-intake/internal/domain"
	"github.com/spec-kit/redemption-intake/internal/repository"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// MessageService coordinates seller/operator conversations.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// ListForUser returns the owner's conversation in ascending creation order.
// The caller's proven identity must match the requested owner.
func (s *MessageService) ListForUser(ctx context.Context, caller *domain.User, ownerID int64) ([]domain.Message, error) {
	if caller == nil || caller.ID != ownerID {
		return nil, apperrors.NewForbidden("messages belong to another user")
	}
	return s.messages.ListByUserAsc(ctx, ownerID)
}

// Post appends a seller message to their own conversation.
func (s *MessageService) Post(ctx context.Context, caller *domain.User, ownerID int64, content string) (*domain.Message, error) {
	if caller == nil || caller.ID != ownerID {
		return nil, apperrors.NewForbidden("messages belong to another user")
	}
	return s.create(ctx, ownerID, content, domain.MessageSenderUser)
}

// AdminListAll returns every message across users, newest first.
func (s *MessageService) AdminListAll(ctx context.Context) ([]domain.Message, error) {
	return s.messages.ListAllDesc(ctx)
}

// AdminListForUser returns one user's messages, newest first.
func (s *MessageService) AdminListForUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	return s.messages.ListByUserDesc(ctx, userID)
}

// AdminPost appends an operator message to a user's conversation.
func (s *MessageService) AdminPost(ctx context.Context, userID int64, content string) (*domain.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return s.create(ctx, userID, content, domain.MessageSenderAdmin)
}

// AdminDelete removes one message.
func (s *MessageService) AdminDelete(ctx context.Context, id int64) error {
	err := s.messages.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("message", nil)
	}
	return err
}

func (s *MessageService) create(ctx context.Context, userID int64, content string, sender domain.MessageSender) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	msg := &domain.Message{UserID: userID, Content: content, Sender: sender}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
