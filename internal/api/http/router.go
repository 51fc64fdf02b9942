package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redemption-intake/internal/api/http/handlers"
	"github.com/spec-kit/redemption-intake/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	OTP         *handlers.OTPHandler
	Submissions *handlers.SubmissionsHandler
	Messages    *handlers.MessagesHandler
	Admin       *handlers.AdminHandler
	Activity    *handlers.ActivityHandler
	Session     *auth.SessionMiddleware
	Guard       *auth.OTPGuard
}

// RegisterRoutes wires HTTP routes.
//
// Three authorization tiers: session JWT for claim creation, the repeatable
// user OTP guard for sensitive reads/writes, and the one-shot admin OTP
// guard for operator mutations. Operator listing routes carry no per-request
// proof; that surface is trusted by network topology.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/send-otp", cfg.OTP.SendUserOTP)
	authGroup.Post("/verify-otp", cfg.OTP.VerifyUserOTP)

	app.Get("/otp/status", cfg.OTP.ProviderStatus)

	app.Post("/submissions", cfg.Session.Handle, cfg.Submissions.Create)

	users := app.Group("/users/:id", cfg.Guard.RequireUser)
	users.Get("/submissions", cfg.Submissions.ListForUser)
	users.Get("/messages", cfg.Messages.List)
	users.Post("/messages", cfg.Messages.Post)

	admin := app.Group("/admin")
	admin.Post("/send-otp", cfg.OTP.SendAdminOTP)
	admin.Post("/verify-otp", cfg.OTP.VerifyAdminOTP)

	admin.Get("/submissions", cfg.Admin.ListSubmissions)
	admin.Get("/submissions/:id", cfg.Admin.GetSubmission)
	admin.Get("/messages", cfg.Admin.ListAllMessages)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:id/messages", cfg.Admin.ListUserMessages)

	admin.Patch("/submissions/:id/status", cfg.Guard.RequireAdmin, cfg.Admin.UpdateSubmissionStatus)
	admin.Post("/users/:id/messages", cfg.Guard.RequireAdmin, cfg.Admin.PostUserMessage)
	admin.Delete("/messages/:id", cfg.Guard.RequireAdmin, cfg.Admin.DeleteMessage)
	admin.Delete("/users/:id", cfg.Guard.RequireAdmin, cfg.Admin.DeleteUser)

	app.Use("/ws/activity", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/activity", websocket.New(cfg.Activity.Stream))
}
