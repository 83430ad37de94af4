package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/rooms/rooms/dto"
	"kosan_backend/internals/features/rooms/rooms/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type RoomController struct {
	Svc *service.RoomService
}

func NewRoomController(db *gorm.DB, log *zap.Logger) *RoomController {
	return &RoomController{Svc: service.NewRoomService(db, log)}
}

// GET /rooms?status=&room_type=&floor=&min_price=&max_price=&q=&ordering=-price
func (ctl *RoomController) List(c *fiber.Ctx) error {
	var q dto.ListRoomsQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "room_number", "asc", helper.DefaultOpts)

	rows, total, err := ctl.Svc.ListRooms(c.UserContext(), q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Daftar kamar", rows, helper.BuildMeta(total, p))
}

func (ctl *RoomController) ListAvailable(c *fiber.Ctx) error {
	rows, err := ctl.Svc.ListAvailableRooms(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Kamar tersedia", fiber.Map{"count": len(rows), "rooms": rows})
}

func (ctl *RoomController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.GetRoom(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Detail kamar", out)
}

func (ctl *RoomController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateRoomRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.CreateRoom(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Kamar berhasil dibuat", out)
}

func (ctl *RoomController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateRoomRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.UpdateRoom(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Kamar diperbarui", out)
}

func (ctl *RoomController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctl.Svc.DeleteRoom(c.UserContext(), actor, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Kamar dihapus", fiber.Map{"room_id": id})
}

// POST /api/a/rooms/:id/maintenance {"maintenance": true|false}
func (ctl *RoomController) SetMaintenance(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.SetMaintenanceRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.SetMaintenance(c.UserContext(), actor, id, req.Maintenance)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Status kamar diperbarui", out)
}
