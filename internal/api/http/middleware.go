package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/redemption-intake/internal/broadcast"
	"github.com/spec-kit/redemption-intake/internal/observability"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: request timeouts,
// activity mirroring, error handling, and request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, broadcaster *broadcast.Broadcaster, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(activityMirrorMiddleware(broadcaster))
	app.Use(errorHandlingMiddleware(logger, metrics, broadcaster))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// activityMirrorMiddleware publishes one request event on entry and one
// response event after handling, for every call, successful or not.
func activityMirrorMiddleware(broadcaster *broadcast.Broadcaster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		broadcaster.Publish(broadcast.LogEvent{
			Category: broadcast.CategoryRequest,
			Message:  c.Method() + " " + c.Path(),
			Origin:   broadcast.OriginHTTP,
			Detail: map[string]any{
				"method": c.Method(),
				"path":   c.Path(),
				"ip":     c.IP(),
			},
		})

		err := c.Next()

		broadcaster.Publish(broadcast.LogEvent{
			Category: broadcast.CategoryResponse,
			Message:  c.Method() + " " + c.Path(),
			Origin:   broadcast.OriginHTTP,
			Detail: map[string]any{
				"method":      c.Method(),
				"path":        c.Path(),
				"status":      c.Response().StatusCode(),
				"duration_ms": time.Since(start).Milliseconds(),
			},
		})
		return err
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, broadcaster *broadcast.Broadcaster) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				broadcaster.Publish(broadcast.LogEvent{
					Category: broadcast.CategoryError,
					Message:  domainErr.Message,
					Origin:   broadcast.OriginHTTP,
					Detail: map[string]any{
						"code":   domainErr.Code,
						"method": c.Method(),
						"path":   c.Path(),
						"status": domainErr.HTTPStatus,
					},
				})
				errPayload := fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}
				if len(domainErr.Details) > 0 {
					errPayload["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"success": false, "error": errPayload})
				err = nil
			}
		}()
		return c.Next()
	}
}
