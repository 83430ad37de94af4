package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	profileCtrl "kosan_backend/internals/features/tenants/profiles/controller"
)

func TenantProfileAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := profileCtrl.NewTenantProfileController(db, log)

	g := r.Group("/tenants")
	g.Get("/", ctl.List)
	g.Get("/active", ctl.ListActive)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Post("/:id/deactivate", ctl.Deactivate)
	g.Post("/:id/activate", ctl.Activate)
}

func TenantProfileUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := profileCtrl.NewTenantProfileController(db, log)

	g := r.Group("/tenant-profile")
	g.Get("/me", ctl.GetMine)
	g.Patch("/me", ctl.UpdateMine)
}
