package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/reports/dashboard/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type DashboardController struct {
	Svc *service.DashboardService
}

func NewDashboardController(db *gorm.DB, log *zap.Logger) *DashboardController {
	return &DashboardController{Svc: service.NewDashboardService(db, log)}
}

func (ctl *DashboardController) Get(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Dashboard(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Dashboard", out)
}
