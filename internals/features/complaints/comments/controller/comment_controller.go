package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/complaints/comments/dto"
	"kosan_backend/internals/features/complaints/comments/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type CommentController struct {
	Svc *service.CommentService
}

func NewCommentController(db *gorm.DB, log *zap.Logger) *CommentController {
	return &CommentController{Svc: service.NewCommentService(db, log)}
}

// GET /complaints/:id/comments
func (ctl *CommentController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	complaintID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Svc.ListComments(c.UserContext(), actor, complaintID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Daftar komentar", rows)
}

func (ctl *CommentController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	complaintID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreateCommentRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.AddComment(c.UserContext(), actor, complaintID, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Komentar ditambahkan", out)
}

func (ctl *CommentController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "comment_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdateCommentRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.UpdateComment(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Komentar diperbarui", out)
}

func (ctl *CommentController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "comment_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctl.Svc.DeleteComment(c.UserContext(), actor, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Komentar dihapus", fiber.Map{"complaint_comment_id": id})
}
