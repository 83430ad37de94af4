package details

import (
	"github.com/gofiber/fiber/v2"

	authRoute "kosan_backend/internals/features/users/auth/route"
	authService "kosan_backend/internals/features/users/auth/service"
)

func AuthRoutes(app *fiber.App, svc *authService.AuthService, requireAuth fiber.Handler) {
	authRoute.AuthRoutes(app, svc, requireAuth)
}
