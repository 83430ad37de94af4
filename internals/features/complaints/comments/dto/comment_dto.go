package dto

import (
	"time"

	"github.com/google/uuid"

	"kosan_backend/internals/features/complaints/comments/model"
)

type CreateCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type UpdateCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type CommentResponse struct {
	CommentID   uuid.UUID `json:"complaint_comment_id"`
	ComplaintID uuid.UUID `json:"complaint_id"`
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	IsAdmin     bool      `json:"is_admin_comment"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModel(m *model.ComplaintCommentModel) CommentResponse {
	out := CommentResponse{
		CommentID:   m.ComplaintCommentID,
		ComplaintID: m.ComplaintCommentComplaintID,
		UserID:      m.ComplaintCommentUserID,
		IsAdmin:     m.ComplaintCommentIsAdmin,
		Comment:     m.ComplaintCommentText,
		CreatedAt:   m.ComplaintCommentCreatedAt,
		UpdatedAt:   m.ComplaintCommentUpdatedAt,
	}
	if m.User != nil {
		out.UserName = m.User.FullName
		out.UserEmail = m.User.Email
	}
	return out
}

func FromModelList(rows []model.ComplaintCommentModel) []CommentResponse {
	out := make([]CommentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
