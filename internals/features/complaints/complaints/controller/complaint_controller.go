package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/complaints/complaints/dto"
	"kosan_backend/internals/features/complaints/complaints/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/storage"
)

type ComplaintController struct {
	Svc *service.ComplaintService
}

func NewComplaintController(db *gorm.DB, log *zap.Logger, files storage.FileStore) *ComplaintController {
	return &ComplaintController{Svc: service.NewComplaintService(db, log, files)}
}

// GET /complaints?status=&category=&priority=&tenant_id=&room_id=&q=&ordering=-priority
func (ctl *ComplaintController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListComplaintsQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	rows, total, err := ctl.Svc.List(c.UserContext(), actor, q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Daftar keluhan", rows, helper.BuildMeta(total, p))
}

func (ctl *ComplaintController) GetByID(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "Detail keluhan", out)
}

func (ctl *ComplaintController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateComplaintRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Keluhan berhasil dikirim", out)
}

func (ctl *ComplaintController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateComplaintRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Keluhan diperbarui", out)
}

// POST /complaints/:id/resolve {"complaint_resolution_notes": "..."}
func (ctl *ComplaintController) Resolve(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ResolveComplaintRequest
	if len(c.Body()) > 0 {
		if err := helper.BindJSON(c, &req); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	out, err := ctl.Svc.MarkResolved(c.UserContext(), actor, id, req.ResolutionNotes)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Keluhan ditandai selesai", out)
}

func (ctl *ComplaintController) Close(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Close(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Keluhan ditutup", out)
}

func (ctl *ComplaintController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctl.Svc.Delete(c.UserContext(), actor, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Keluhan dihapus", fiber.Map{"complaint_id": id})
}

// POST /complaints/:id/attachment (multipart, field: file)
func (ctl *ComplaintController) UploadAttachment(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File lampiran wajib diunggah (field: file)")
	}
	obj, err := storage.ReadFormFile(fh)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.UploadAttachment(c.UserContext(), actor, id, obj)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Lampiran tersimpan", out)
}

func (ctl *ComplaintController) Statistics(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Statistics(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Statistik keluhan", out)
}
