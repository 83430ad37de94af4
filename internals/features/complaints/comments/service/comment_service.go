package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/features/complaints/comments/dto"
	"kosan_backend/internals/features/complaints/comments/model"
	complaintService "kosan_backend/internals/features/complaints/complaints/service"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type CommentService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewCommentService(db *gorm.DB, log *zap.Logger) *CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommentService{DB: db, Log: log, Now: time.Now}
}

func findComment(db *gorm.DB, id uuid.UUID) (*model.ComplaintCommentModel, error) {
	var m model.ComplaintCommentModel
	if err := db.Preload("User").First(&m, "complaint_comment_id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Komentar tidak ditemukan")
	}
	return &m, nil
}

// canAccess: admin atau penyewa pemilik keluhan.
func canAccess(db *gorm.DB, actor helperAuth.Actor, complaintID uuid.UUID) error {
	c, err := complaintService.FindComplaint(db, complaintID)
	if err != nil {
		return err
	}
	return complaintService.EnsureCanView(actor, c)
}

func cleanText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.InvalidInput("Komentar tidak boleh kosong")
	}
	return s, nil
}

// ListComments: urut kronologis.
func (s *CommentService) ListComments(ctx context.Context, actor helperAuth.Actor, complaintID uuid.UUID) ([]dto.CommentResponse, error) {
	db := s.DB.WithContext(ctx)
	if err := canAccess(db, actor, complaintID); err != nil {
		return nil, err
	}
	var rows []model.ComplaintCommentModel
	if err := db.Preload("User").
		Where("complaint_comment_complaint_id = ?", complaintID).
		Order("complaint_comment_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil komentar", err)
	}
	return dto.FromModelList(rows), nil
}

// AddComment: is_admin diturunkan dari role penulis.
func (s *CommentService) AddComment(ctx context.Context, actor helperAuth.Actor, complaintID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	text, err := cleanText(req.Comment)
	if err != nil {
		return nil, err
	}
	if actor.UserID == uuid.Nil {
		return nil, apperror.Forbidden("Komentar harus ditulis oleh pengguna")
	}
	db := s.DB.WithContext(ctx)
	if err := canAccess(db, actor, complaintID); err != nil {
		return nil, err
	}

	m := &model.ComplaintCommentModel{
		ComplaintCommentComplaintID: complaintID,
		ComplaintCommentUserID:      actor.UserID,
		ComplaintCommentText:        text,
		ComplaintCommentIsAdmin:     actor.IsAdmin(),
	}
	if err := db.Create(m).Error; err != nil {
		return nil, apperror.FromDB(err, "Gagal menambah komentar")
	}
	s.Log.Info("complaint comment added",
		zap.String("complaint_id", complaintID.String()),
		zap.String("comment_id", m.ComplaintCommentID.String()),
	)
	m, err = findComment(db, m.ComplaintCommentID)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m)
	return &out, nil
}

// UpdateComment: hanya penulis.
func (s *CommentService) UpdateComment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	text, err := cleanText(req.Comment)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	m, err := findComment(db, id)
	if err != nil {
		return nil, err
	}
	if m.ComplaintCommentUserID != actor.UserID {
		return nil, apperror.Forbidden("Anda hanya dapat mengubah komentar Anda sendiri")
	}
	if err := db.Model(&model.ComplaintCommentModel{}).
		Where("complaint_comment_id = ?", id).
		Update("complaint_comment_text", text).Error; err != nil {
		return nil, apperror.Internal("Gagal memperbarui komentar", err)
	}
	m, err = findComment(db, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m)
	return &out, nil
}

// DeleteComment: penulis atau admin.
func (s *CommentService) DeleteComment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	db := s.DB.WithContext(ctx)
	m, err := findComment(db, id)
	if err != nil {
		return err
	}
	if !actor.IsPrivileged() && m.ComplaintCommentUserID != actor.UserID {
		return apperror.Forbidden("Anda hanya dapat menghapus komentar Anda sendiri")
	}
	if err := db.Delete(&model.ComplaintCommentModel{}, "complaint_comment_id = ?", id).Error; err != nil {
		return apperror.FromDB(err, "Gagal menghapus komentar")
	}
	s.Log.Info("complaint comment deleted", zap.String("comment_id", id.String()))
	return nil
}
