package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commentRoute "kosan_backend/internals/features/complaints/comments/route"
	complaintRoute "kosan_backend/internals/features/complaints/complaints/route"
	"kosan_backend/internals/helpers/storage"
)

func ComplaintAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger, files storage.FileStore) {
	complaintRoute.ComplaintAdminRoutes(r, db, log, files)
	commentRoute.CommentRoutes(r, db, log)
}

func ComplaintUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger, files storage.FileStore) {
	complaintRoute.ComplaintUserRoutes(r, db, log, files)
	commentRoute.CommentRoutes(r, db, log)
}
