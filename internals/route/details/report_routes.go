package details

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dashboardRoute "kosan_backend/internals/features/reports/dashboard/route"
	historyRoute "kosan_backend/internals/features/reports/history/route"
)

func ReportAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	dashboardRoute.DashboardAdminRoutes(r, db, log)
	historyRoute.HistoryAdminRoutes(r, db, log)
}

func ReportUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	historyRoute.HistoryUserRoutes(r, db, log)
}
