package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	userModel "kosan_backend/internals/features/users/user/model"
)

type ComplaintCommentModel struct {
	ComplaintCommentID          uuid.UUID `gorm:"column:complaint_comment_id;type:uuid;primaryKey" json:"complaint_comment_id"`
	ComplaintCommentComplaintID uuid.UUID `gorm:"column:complaint_comment_complaint_id;type:uuid;not null;index" json:"complaint_comment_complaint_id"`
	ComplaintCommentUserID      uuid.UUID `gorm:"column:complaint_comment_user_id;type:uuid;not null;index" json:"complaint_comment_user_id"`
	ComplaintCommentText        string    `gorm:"column:complaint_comment_text;type:text;not null" json:"complaint_comment_text"`

	// diturunkan dari role penulis saat komentar dibuat
	ComplaintCommentIsAdmin bool `gorm:"column:complaint_comment_is_admin;not null" json:"complaint_comment_is_admin"`

	ComplaintCommentCreatedAt time.Time `gorm:"column:complaint_comment_created_at;autoCreateTime" json:"complaint_comment_created_at"`
	ComplaintCommentUpdatedAt time.Time `gorm:"column:complaint_comment_updated_at;autoUpdateTime" json:"complaint_comment_updated_at"`

	Complaint *complaintModel.ComplaintModel `gorm:"foreignKey:ComplaintCommentComplaintID;references:ComplaintID;constraint:OnDelete:CASCADE" json:"-"`
	User      *userModel.UserModel           `gorm:"foreignKey:ComplaintCommentUserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (ComplaintCommentModel) TableName() string { return "complaint_comments" }

func (m *ComplaintCommentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ComplaintCommentID == uuid.Nil {
		m.ComplaintCommentID = uuid.New()
	}
	return nil
}
