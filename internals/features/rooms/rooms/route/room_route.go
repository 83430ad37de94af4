package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	roomController "kosan_backend/internals/features/rooms/rooms/controller"
)

func RoomAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := roomController.NewRoomController(db, log)

	g := r.Group("/rooms")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/available", ctl.ListAvailable)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/maintenance", ctl.SetMaintenance)
}

func RoomUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := roomController.NewRoomController(db, log)

	g := r.Group("/rooms")
	g.Get("/", ctl.List)
	g.Get("/available", ctl.ListAvailable)
	g.Get("/:id", ctl.GetByID)
}
