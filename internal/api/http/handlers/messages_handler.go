package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/api/dto"
	"github.com/spec-kit/redemption-intake/internal/auth"
	"github.com/spec-kit/redemption-intake/internal/service"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// MessagesHandler manages seller-facing conversation endpoints.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messageService}
}

// List handles GET /users/:id/messages. Conversation order, oldest first.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	msgs, err := h.messages.ListForUser(c.Context(), principal.User, ownerID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.NewMessageListResponse(msgs))
}

// Post handles POST /users/:id/messages.
func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.messages.Post(c.Context(), principal.User, ownerID, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.NewMessageResponse(msg))
}
