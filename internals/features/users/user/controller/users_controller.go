package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/users/user/dto"
	"kosan_backend/internals/features/users/user/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type UserController struct {
	Svc *service.UserService
}

func NewUserController(db *gorm.DB, log *zap.Logger) *UserController {
	return &UserController{Svc: service.NewUserService(db, log)}
}

// GET /api/a/users?role=&is_active=&q=
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListUsersQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	users, total, err := uc.Svc.ListUsers(c.UserContext(), actor, q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Users fetched successfully", users, helper.BuildMeta(total, p))
}

// POST /api/a/users
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateUserRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.CreateUser(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "User berhasil dibuat", out)
}

// POST /api/a/users/tenants
func (uc *UserController) CreateTenantUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateTenantUserRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.CreateTenantUser(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Penyewa berhasil didaftarkan", out)
}

func (uc *UserController) GetUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.GetUser(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "User fetched successfully", out)
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateUserRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.UpdateUser(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "User diperbarui", out)
}

// POST /api/a/users/:id/deactivate
func (uc *UserController) DeactivateUser(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.DeactivateUser(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "User dinonaktifkan", out)
}

/* ===================== self-service ===================== */

func (uc *UserController) GetMe(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.GetUser(c.UserContext(), actor, actor.UserID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "User fetched successfully", out)
}

func (uc *UserController) UpdateMe(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateUserRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.UpdateUser(c.UserContext(), actor, actor.UserID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Profil diperbarui", out)
}

func (uc *UserController) ChangeEmail(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ChangeEmailRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := uc.Svc.ChangeEmail(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Email diperbarui", out)
}

func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := uc.Svc.ChangePassword(c.UserContext(), actor, req); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Password changed successfully", nil)
}
