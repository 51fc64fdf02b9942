package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/api/dto"
	"github.com/spec-kit/redemption-intake/internal/service"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// OTPHandler exposes the passcode issue/verify flows.
type OTPHandler struct {
	otp *service.OTPService
}

// NewOTPHandler constructs handler.
func NewOTPHandler(otpService *service.OTPService) *OTPHandler {
	return &OTPHandler{otp: otpService}
}

// SendUserOTP handles POST /auth/send-otp.
func (h *OTPHandler) SendUserOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.otp.SendUserOTP(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"message": message})
}

// VerifyUserOTP handles POST /auth/verify-otp.
func (h *OTPHandler) VerifyUserOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.otp.VerifyUserOTP(c.Context(), req.Email, req.OTP); err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"verified": true})
}

// SendAdminOTP handles POST /admin/send-otp.
func (h *OTPHandler) SendAdminOTP(c *fiber.Ctx) error {
	message, err := h.otp.SendAdminOTP(c.Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"message": message})
}

// VerifyAdminOTP handles POST /admin/verify-otp.
func (h *OTPHandler) VerifyAdminOTP(c *fiber.Ctx) error {
	var req dto.VerifyAdminOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.otp.VerifyAdminOTP(c.Context(), req.OTP); err != nil {
		return err
	}
	return ok(c, http.StatusOK, fiber.Map{"verified": true})
}

// ProviderStatus handles GET /otp/status.
func (h *OTPHandler) ProviderStatus(c *fiber.Ctx) error {
	status, err := h.otp.ProviderStatus(c.Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, status)
}
