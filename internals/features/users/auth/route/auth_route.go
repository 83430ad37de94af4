package route

import (
	"github.com/gofiber/fiber/v2"

	"kosan_backend/internals/features/users/auth/controller"
	"kosan_backend/internals/features/users/auth/service"
	rateLimiter "kosan_backend/internals/middlewares"
)

// AuthRoutes: /api/auth. requireAuth dipasang di endpoint yang butuh login.
func AuthRoutes(app *fiber.App, svc *service.AuthService, requireAuth fiber.Handler) {
	authController := controller.NewAuthController(svc)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)

	baseAuth.Post("/logout", requireAuth, authController.Logout)
	baseAuth.Get("/me", requireAuth, authController.Me)
}
