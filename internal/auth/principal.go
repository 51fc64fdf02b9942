package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. It is produced only by the
// session middleware or the OTP guards and threaded through request locals;
// handlers never re-derive identity themselves.
type Principal struct {
	User  *domain.User
	Admin bool
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func setPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}
