package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/tenants/assignments/dto"
	"kosan_backend/internals/features/tenants/assignments/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type AssignmentController struct {
	Svc *service.AssignmentService
}

func NewAssignmentController(db *gorm.DB, log *zap.Logger) *AssignmentController {
	return &AssignmentController{Svc: service.NewAssignmentService(db, log)}
}

// POST /assignments
func (ctl *AssignmentController) Assign(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.AssignRoomRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.AssignRoom(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Penyewa berhasil ditempatkan", out)
}

// POST /assignments/:id/end
func (ctl *AssignmentController) End(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.EndAssignmentRequest
	if len(c.Body()) > 0 {
		if err := helper.BindJSON(c, &req); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	out, err := ctl.Svc.EndAssignment(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Penempatan diakhiri", out)
}

// POST /assignments/tenant/:tenant_id/change-room
func (ctl *AssignmentController) ChangeRoom(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	tenantID, err := helper.ParseUUIDParam(c, "tenant_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ChangeRoomRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.ChangeRoom(c.UserContext(), actor, tenantID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Penyewa dipindahkan ke kamar "+out.RoomNumber, out)
}

func (ctl *AssignmentController) GetByID(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.GetAssignment(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Detail penempatan", out)
}

// GET /assignments?tenant_id=&room_id=&is_current=
func (ctl *AssignmentController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListAssignmentsQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "move_in_date", "desc", helper.AdminOpts)

	rows, total, err := ctl.Svc.ListAssignments(c.UserContext(), actor, q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Daftar penempatan", rows, helper.BuildMeta(total, p))
}

// GET /assignments/room/:room_id/current
func (ctl *AssignmentController) CurrentByRoom(c *fiber.Ctx) error {
	roomID, err := helper.ParseUUIDParam(c, "room_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.CurrentByRoom(c.UserContext(), roomID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if out == nil {
		return helper.JsonOK(c, "Kamar sedang kosong", nil)
	}
	return helper.JsonOK(c, "Penempatan aktif", out)
}

// GET /assignments/tenant/:tenant_id/history
func (ctl *AssignmentController) TenantHistory(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	tenantID, err := helper.ParseUUIDParam(c, "tenant_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Svc.TenantHistory(c.UserContext(), actor, tenantID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Riwayat penempatan", rows)
}
