package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// ok writes the success envelope. Every response carries the success flag
// plus either a payload or an error; failures are shaped by the error
// middleware.
func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return int64(id), nil
}
