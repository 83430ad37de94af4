package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/tenants/profiles/dto"
	"kosan_backend/internals/features/tenants/profiles/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type TenantProfileController struct {
	Svc *service.ProfileService
}

func NewTenantProfileController(db *gorm.DB, log *zap.Logger) *TenantProfileController {
	return &TenantProfileController{Svc: service.NewProfileService(db, log)}
}

// GET /api/a/tenants
func (ctl *TenantProfileController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListTenantProfilesQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	rows, total, err := ctl.Svc.List(c.UserContext(), actor, q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Daftar penyewa", rows, helper.BuildMeta(total, p))
}

// GET /api/a/tenants/active
func (ctl *TenantProfileController) ListActive(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Svc.ListActive(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Penyewa aktif", rows)
}

func (ctl *TenantProfileController) GetByID(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Get(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Detail penyewa", out)
}

// GET /api/u/tenant-profile/me
func (ctl *TenantProfileController) GetMine(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.GetMine(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Profil saya", out)
}

// PATCH /api/u/tenant-profile/me
func (ctl *TenantProfileController) UpdateMine(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateTenantProfileRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	mine, err := ctl.Svc.GetMine(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Update(c.UserContext(), actor, mine.TenantProfileID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Profil diperbarui", out)
}

func (ctl *TenantProfileController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateTenantProfileRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Profil penyewa diperbarui", out)
}

// POST /api/a/tenants/:id/deactivate
func (ctl *TenantProfileController) Deactivate(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Deactivate(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Penyewa dinonaktifkan", out)
}

func (ctl *TenantProfileController) Activate(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Activate(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Penyewa diaktifkan", out)
}
