package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/api/dto"
	"github.com/spec-kit/redemption-intake/internal/auth"
	"github.com/spec-kit/redemption-intake/internal/service"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// SubmissionsHandler manages seller-facing claim endpoints.
type SubmissionsHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionsHandler constructs handler.
func NewSubmissionsHandler(submissionService *service.SubmissionService) *SubmissionsHandler {
	return &SubmissionsHandler{submissions: submissionService}
}

// Create handles POST /submissions.
func (h *SubmissionsHandler) Create(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SubmissionCreateInput{
		TicketUserName: req.TicketUserName,
		GCCode:         req.GCCode,
		GCPhone:        req.GCPhone,
		TicketNumber:   req.TicketNumber,
		UPIID:          req.UPIID,
		Amount:         req.Amount,
		ProofVideoURL:  req.ProofVideoURL,
	}
	sub, err := h.submissions.Create(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, dto.NewSubmissionResponse(sub))
}

// ListForUser handles GET /users/:id/submissions.
func (h *SubmissionsHandler) ListForUser(c *fiber.Ctx) error {
	principal, found := auth.PrincipalFromContext(c)
	if !found || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	subs, err := h.submissions.ListForUser(c.Context(), principal.User, ownerID)
	if err != nil {
		return err
	}
	items := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, dto.NewSubmissionResponse(&subs[i]))
	}
	return ok(c, http.StatusOK, items)
}
