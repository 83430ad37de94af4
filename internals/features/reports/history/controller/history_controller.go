package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/reports/history/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type HistoryController struct {
	Svc *service.HistoryService
}

func NewHistoryController(db *gorm.DB, log *zap.Logger) *HistoryController {
	return &HistoryController{Svc: service.NewHistoryService(db, log)}
}

// GET /history (milik sendiri)
func (ctl *HistoryController) Mine(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.TenantHistory(c.UserContext(), actor, nil)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Riwayat penyewa", out)
}

// GET /users/:user_id/history
func (ctl *HistoryController) ByUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	userID, err := helper.ParseUUIDParam(c, "user_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.TenantHistory(c.UserContext(), actor, &userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Riwayat penyewa", out)
}
