package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/api/http/handlers"
	"github.com/spec-kit/saas-backend/internal/auth"
	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Plans          *handlers.PlansHandler
	Chat           *handlers.ChatHandler
	BillingWebhook *handlers.BillingWebhookHandler
	AuthMiddleware *auth.AuthMiddleware
	UserService    *service.UserService
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/sign-in/provider", cfg.Auth.SignInWithProvider)
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-up/provider", cfg.Auth.SignUpWithProvider)
	authGroup.Post("/refresh-token", cfg.AuthMiddleware.RequireRefreshToken(), cfg.Auth.Refresh)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Get("/me", cfg.AuthMiddleware.RequireAccessToken(), cfg.Auth.Me)

	ownUser := auth.RequireOwnership(cfg.UserService, func(u *domain.User) string { return u.ID })

	users := app.Group("/users", cfg.AuthMiddleware.RequireAccessToken())
	users.Post("", auth.RequireRole(domain.RoleAdmin), cfg.Users.Create)
	users.Get("", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Get("/:id", ownUser, cfg.Users.Get)
	users.Patch("/:id", ownUser, cfg.Users.Update)
	users.Delete("/:id", ownUser, cfg.Users.Delete)

	plans := app.Group("/plans", cfg.AuthMiddleware.RequireAccessToken())
	plans.Get("", cfg.Plans.List)
	plans.Get("/:id", cfg.Plans.Get)

	chat := app.Group("/chat", cfg.AuthMiddleware.RequireAPIKey())
	chat.Post("/messages", cfg.Chat.CreateMessage)

	app.Post("/webhooks/billing", cfg.BillingWebhook.Handle)
}
