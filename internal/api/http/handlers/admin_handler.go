package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/api/dto"
	"github.com/spec-kit/redemption-intake/internal/service"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// AdminHandler manages the operator dashboard surface. Listing routes are
// trusted by network topology; mutating routes sit behind the one-shot
// admin passcode guard.
type AdminHandler struct {
	submissions *service.SubmissionService
	messages    *service.MessageService
	users       *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(submissionService *service.SubmissionService, messageService *service.MessageService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		submissions: submissionService,
		messages:    messageService,
		users:       userService,
	}
}

// ListSubmissions handles GET /admin/submissions.
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	subs, err := h.submissions.ListAll(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, dto.NewSubmissionWithOwnerResponse(&subs[i]))
	}
	return ok(c, http.StatusOK, items)
}

// GetSubmission handles GET /admin/submissions/:id.
func (h *AdminHandler) GetSubmission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sub, err := h.submissions.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.NewSubmissionWithOwnerResponse(sub))
}

// UpdateSubmissionStatus handles PATCH /admin/submissions/:id/status.
func (h *AdminHandler) UpdateSubmissionStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sub, err := h.submissions.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.NewSubmissionResponse(sub))
}

// ListAllMessages handles GET /admin/messages. Newest first across users.
func (h *AdminHandler) ListAllMessages(c *fiber.Ctx) error {
	msgs, err := h.messages.AdminListAll(c.Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.NewMessageListResponse(msgs))
}

// ListUserMessages handles GET /admin/users/:id/messages. Newest first.
func (h *AdminHandler) ListUserMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	msgs, err := h.messages.AdminListForUser(c.Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, dto.NewMessageListResponse(msgs))
}

// PostUserMessage handles POST /admin/users/:id/messages.
func (h *AdminHandler) PostUserMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.messages.AdminPost(c.Context(), id, req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.NewMessageResponse(msg))
}

// DeleteMessage handles DELETE /admin/messages/:id.
func (h *AdminHandler) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.messages.AdminDelete(c.Context(), id); err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"deleted": true})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return ok(c, http.StatusOK, items)
}

// DeleteUser handles DELETE /admin/users/:id. Cascades to the user's
// messages and submissions.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Context(), id); err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"deleted": true})
}
