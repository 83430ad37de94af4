package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commentController "kosan_backend/internals/features/complaints/comments/controller"
)

// CommentRoutes dipakai di /api/u dan /api/a; akses dicek di service.
func CommentRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := commentController.NewCommentController(db, log)

	r.Get("/complaints/:id/comments", ctl.List)
	r.Post("/complaints/:id/comments", ctl.Create)

	g := r.Group("/complaint-comments")
	g.Patch("/:comment_id", ctl.Update)
	g.Delete("/:comment_id", ctl.Delete)
}
