package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	authService "kosan_backend/internals/features/users/auth/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

// AuthMiddleware memverifikasi access token (Bearer atau cookie) dan mengisi Locals
// user_id, userRole, dan raw_token.
func AuthMiddleware(svc *authService.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := helperAuth.GetRawAccessToken(c)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Missing token")
		}

		claims, err := svc.Authenticate(c.UserContext(), raw)
		switch {
		case err == nil:
		case errors.Is(err, authService.ErrTokenExpired):
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token expired")
		case errors.Is(err, authService.ErrTokenInvalid):
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token tidak valid")
		default:
			log.Warn("auth middleware", zap.String("path", c.Path()), zap.Error(err))
			return helper.JsonAppError(c, err)
		}

		c.Locals(helperAuth.LocUserID, claims.UserID.String())
		c.Locals(helperAuth.LocUserRole, claims.Role)
		helperAuth.SetRawAccessToken(c, raw)
		return c.Next()
	}
}
