package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dashboardController "kosan_backend/internals/features/reports/dashboard/controller"
)

func DashboardAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := dashboardController.NewDashboardController(db, log)
	r.Get("/dashboard", ctl.Get)
}
