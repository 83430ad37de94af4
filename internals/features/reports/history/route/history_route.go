package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	historyController "kosan_backend/internals/features/reports/history/controller"
)

func HistoryUserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := historyController.NewHistoryController(db, log)
	r.Get("/history", ctl.Mine)
}

func HistoryAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := historyController.NewHistoryController(db, log)
	r.Get("/users/:user_id/history", ctl.ByUser)
}
