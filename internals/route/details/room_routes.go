package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	roomRoute "kosan_backend/internals/features/rooms/rooms/route"
)

func RoomAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	roomRoute.RoomAdminRoutes(r, db, log)
}

func RoomUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	roomRoute.RoomUserRoutes(r, db, log)
}
