package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/redemption-intake/internal/otp"
	"github.com/spec-kit/redemption-intake/internal/repository"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// Header names carrying passcode proof for guarded operations.
const (
	HeaderAuthEmail = "X-Auth-Email"
	HeaderAuthOTP   = "X-Auth-OTP"
	HeaderAdminOTP  = "X-Admin-OTP"
)

// OTPGuard gates sensitive operations behind proof of recent passcode
// verification. The user variant is repeatable; the admin variant consumes
// the code on first use so a replayed code is refused.
type OTPGuard struct {
	verifier otp.Verifier
	users    repository.UserRepository
}

// NewOTPGuard constructs the guard.
func NewOTPGuard(verifier otp.Verifier, users repository.UserRepository) *OTPGuard {
	return &OTPGuard{verifier: verifier, users: users}
}

// RequireUser checks the email/passcode header pair, then attaches the
// matching user as the request principal. The lookup happens fresh on every
// call; no record is mutated.
func (g *OTPGuard) RequireUser(c *fiber.Ctx) error {
	email := c.Get(HeaderAuthEmail)
	code := c.Get(HeaderAuthOTP)
	if email == "" || code == "" {
		return apperrors.NewValidationError("passcode proof headers required", nil)
	}

	if err := g.verifier.VerifyUser(c.Context(), email, code); err != nil {
		if errors.Is(err, otp.ErrCodeInvalid) {
			return apperrors.NewUnauthorized("invalid or expired passcode")
		}
		return apperrors.MapError(err)
	}

	user, err := g.users.GetByEmail(c.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("unknown user")
		}
		return apperrors.MapError(err)
	}

	setPrincipal(c, &Principal{User: user})
	return c.Next()
}

// RequireAdmin checks and consumes an operator passcode. Consumption happens
// atomically before the handler runs, so the same code cannot authorize a
// second operation.
func (g *OTPGuard) RequireAdmin(c *fiber.Ctx) error {
	code := c.Get(HeaderAdminOTP)
	if code == "" {
		return apperrors.NewValidationError("admin passcode header required", nil)
	}

	if err := g.verifier.ConsumeAdmin(c.Context(), code); err != nil {
		if errors.Is(err, otp.ErrCodeInvalid) {
			return apperrors.NewUnauthorized("invalid or expired passcode")
		}
		return apperrors.MapError(err)
	}

	setPrincipal(c, &Principal{Admin: true})
	return c.Next()
}
