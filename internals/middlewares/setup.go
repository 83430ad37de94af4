package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kosan_backend/internals/middlewares/logger"
)

// SetupMiddlewares: recovery harus paling luar supaya panic di middleware lain tetap tertangkap.
func SetupMiddlewares(app *fiber.App, log *zap.Logger) {
	app.Use(RecoveryMiddleware(log))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
}
