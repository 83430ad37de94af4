package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	userRoute "kosan_backend/internals/features/users/user/route"
)

// /api/a/users
func UserAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	userRoute.UserAdminRoutes(r, db, log)
}

// /api/u/users/me
func UserUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	userRoute.UserRoutes(r, db, log)
}
