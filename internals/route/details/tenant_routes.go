package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	assignmentRoute "kosan_backend/internals/features/tenants/assignments/route"
	profileRoute "kosan_backend/internals/features/tenants/profiles/route"
)

func TenantAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	profileRoute.TenantProfileAdminRoutes(r, db, log)
	assignmentRoute.AssignmentAdminRoutes(r, db, log)
}

func TenantUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	profileRoute.TenantProfileUserRoutes(r, db, log)
	assignmentRoute.AssignmentUserRoutes(r, db, log)
}
