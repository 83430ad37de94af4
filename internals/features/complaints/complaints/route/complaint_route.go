package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	complaintController "kosan_backend/internals/features/complaints/complaints/controller"
	"kosan_backend/internals/helpers/storage"
)

func ComplaintAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger, files storage.FileStore) {
	ctl := complaintController.NewComplaintController(db, log, files)

	g := r.Group("/complaints")
	g.Get("/", ctl.List)
	g.Get("/statistics", ctl.Statistics)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/resolve", ctl.Resolve)
	g.Post("/:id/close", ctl.Close)
	g.Post("/:id/attachment", ctl.UploadAttachment)
}

func ComplaintUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger, files storage.FileStore) {
	ctl := complaintController.NewComplaintController(db, log, files)

	g := r.Group("/complaints")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Get("/:id", ctl.GetByID)
	g.Post("/:id/attachment", ctl.UploadAttachment)
}
