package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	assignmentController "kosan_backend/internals/features/tenants/assignments/controller"
)

func AssignmentAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := assignmentController.NewAssignmentController(db, log)

	g := r.Group("/assignments")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Assign)
	g.Get("/room/:room_id/current", ctl.CurrentByRoom)
	g.Get("/tenant/:tenant_id/history", ctl.TenantHistory)
	g.Post("/tenant/:tenant_id/change-room", ctl.ChangeRoom)
	g.Get("/:id", ctl.GetByID)
	g.Post("/:id/end", ctl.End)
}

// Penyewa hanya melihat penempatan miliknya (difilter di service).
func AssignmentUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := assignmentController.NewAssignmentController(db, log)

	g := r.Group("/assignments")
	g.Get("/", ctl.List)
	g.Get("/tenant/:tenant_id/history", ctl.TenantHistory)
	g.Get("/:id", ctl.GetByID)
}
