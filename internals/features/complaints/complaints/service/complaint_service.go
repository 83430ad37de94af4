package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	commentDto "kosan_backend/internals/features/complaints/comments/dto"
	commentModel "kosan_backend/internals/features/complaints/comments/model"
	"kosan_backend/internals/features/complaints/complaints/dto"
	"kosan_backend/internals/features/complaints/complaints/model"
	roomService "kosan_backend/internals/features/rooms/rooms/service"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/storage"
)

const attachmentDir = "complaints/attachments"

type ComplaintService struct {
	DB    *gorm.DB
	Log   *zap.Logger
	Now   func() time.Time
	Files storage.FileStore
}

func NewComplaintService(db *gorm.DB, log *zap.Logger, files storage.FileStore) *ComplaintService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ComplaintService{DB: db, Log: log, Now: time.Now, Files: files}
}

func requireAdmin(actor helperAuth.Actor, feature string) error {
	if actor.IsPrivileged() {
		return nil
	}
	return apperror.Forbidden(constants.RoleErrorAdmin(feature))
}

func FindComplaint(db *gorm.DB, id uuid.UUID) (*model.ComplaintModel, error) {
	var m model.ComplaintModel
	if err := db.Preload("Tenant.User").Preload("Room").Preload("Resolver").
		First(&m, "complaint_id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Keluhan tidak ditemukan")
	}
	return &m, nil
}

// EnsureCanView: admin/system atau penyewa pemilik keluhan.
func EnsureCanView(actor helperAuth.Actor, m *model.ComplaintModel) error {
	if actor.IsPrivileged() {
		return nil
	}
	if m.Tenant != nil && m.Tenant.TenantProfileUserID == actor.UserID {
		return nil
	}
	return apperror.Forbidden("Anda tidak memiliki akses ke keluhan ini")
}

func commentCounts(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID uuid.UUID
		N  int64
	}
	if err := db.Model(&commentModel.ComplaintCommentModel{}).
		Select("complaint_comment_complaint_id AS id, COUNT(*) AS n").
		Where("complaint_comment_complaint_id IN ?", ids).
		Group("complaint_comment_complaint_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}

func (s *ComplaintService) respond(db *gorm.DB, id uuid.UUID) (*dto.ComplaintResponse, error) {
	m, err := FindComplaint(db, id)
	if err != nil {
		return nil, err
	}
	counts, err := commentCounts(db, []uuid.UUID{id})
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung komentar", err)
	}
	out := dto.FromModel(m, counts[id], s.Now())
	return &out, nil
}

/* ===================== CREATE ===================== */

// Create: hanya penghuni dengan profil aktif. Kamar default = kamar yang sedang ditempati.
func (s *ComplaintService) Create(ctx context.Context, actor helperAuth.Actor, req dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	req.Normalize()
	if utf8.RuneCountInString(req.Title) < 5 {
		return nil, apperror.InvalidInput("Judul harus minimal 5 karakter")
	}
	if utf8.RuneCountInString(req.Description) < 10 {
		return nil, apperror.InvalidInput("Deskripsi harus minimal 10 karakter")
	}

	var id uuid.UUID
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := profileService.FindByUserID(tx, actor.UserID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return apperror.Forbidden("Hanya penghuni yang dapat membuat keluhan")
			}
			return err
		}
		if !profile.TenantProfileIsActive {
			return apperror.Forbidden("Profil penyewa tidak aktif")
		}

		roomID := req.RoomID
		if roomID != nil {
			if _, err := roomService.FindRoom(tx, *roomID); err != nil {
				if apperror.KindOf(err) == apperror.KindNotFound {
					return apperror.InvalidInput("Kamar tidak ditemukan")
				}
				return err
			}
		} else {
			var cur []assignmentModel.RoomAssignmentModel
			if err := tx.Where("room_assignment_tenant_id = ? AND room_assignment_is_current = ?", profile.TenantProfileID, true).
				Limit(1).Find(&cur).Error; err != nil {
				return apperror.Internal("Gagal membaca penempatan", err)
			}
			if len(cur) > 0 {
				rid := cur[0].RoomAssignmentRoomID
				roomID = &rid
			}
		}

		m := &model.ComplaintModel{
			ComplaintTenantID:    profile.TenantProfileID,
			ComplaintRoomID:      roomID,
			ComplaintTitle:       req.Title,
			ComplaintDescription: req.Description,
			ComplaintCategory:    req.Category,
			ComplaintPriority:    req.Priority,
			ComplaintStatus:      model.StatusOpen,
			ComplaintCreatedAt:   s.Now(),
		}
		if err := tx.Create(m).Error; err != nil {
			return apperror.FromDB(err, "Gagal membuat keluhan")
		}
		id = m.ComplaintID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("complaint created", zap.String("complaint_id", id.String()), zap.String("user_id", actor.UserID.String()))
	return s.respond(s.DB.WithContext(ctx), id)
}

/* ===================== STATUS ===================== */

func trimmedNotes(notes *string) string {
	if notes == nil {
		return ""
	}
	return strings.TrimSpace(*notes)
}

// applyStatus mengisi patch untuk transisi status. Status yang sama = no-op.
func applyStatus(m *model.ComplaintModel, next model.ComplaintStatus, notes *string, actor helperAuth.Actor, now time.Time, patch map[string]any) error {
	cur := m.ComplaintStatus
	if cur == next {
		return nil
	}
	if !cur.CanTransitionTo(next) {
		return apperror.InvalidInput(fmt.Sprintf("Status keluhan tidak bisa diubah dari %s ke %s",
			dto.StatusLabel(cur), dto.StatusLabel(next)))
	}
	switch next {
	case model.StatusResolved:
		if n := trimmedNotes(notes); n != "" {
			patch["complaint_resolution_notes"] = n
		} else if !m.HasResolutionNotes() {
			return apperror.InvalidInput("Catatan penyelesaian diperlukan saat menandai sebagai selesai")
		}
		patch["complaint_resolved_at"] = now
		if id := actor.UserIDPtr(); id != nil {
			patch["complaint_resolved_by"] = *id
		} else {
			patch["complaint_resolved_by"] = nil
		}
	case model.StatusClosed:
		if m.ComplaintResolvedAt == nil {
			patch["complaint_resolved_at"] = now
		}
		if id := actor.UserIDPtr(); m.ComplaintResolvedBy == nil && id != nil {
			patch["complaint_resolved_by"] = *id
		}
	}
	patch["complaint_status"] = next
	return nil
}

// save menulis patch dengan syarat status belum berubah sejak dibaca.
func save(tx *gorm.DB, m *model.ComplaintModel, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	res := tx.Model(&model.ComplaintModel{}).
		Where("complaint_id = ? AND complaint_status = ?", m.ComplaintID, m.ComplaintStatus).
		Updates(patch)
	if res.Error != nil {
		return apperror.Internal("Gagal memperbarui keluhan", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("Status keluhan berubah, coba lagi")
	}
	return nil
}

// Update (admin): kategori, prioritas, catatan, dan status.
func (s *ComplaintService) Update(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error) {
	if err := requireAdmin(actor, "ubah keluhan"); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := FindComplaint(tx, id)
		if err != nil {
			return err
		}
		patch := map[string]any{}
		if req.Category != nil {
			patch["complaint_category"] = *req.Category
		}
		if req.Priority != nil {
			patch["complaint_priority"] = *req.Priority
		}
		if req.ResolutionNotes != nil {
			target := m.ComplaintStatus
			if req.Status != nil {
				target = *req.Status
			}
			n := trimmedNotes(req.ResolutionNotes)
			// catatan yang sudah ada tidak boleh dihapus saat keluhan selesai atau ditutup
			if n == "" && (target == model.StatusResolved || (target == model.StatusClosed && m.HasResolutionNotes())) {
				return apperror.InvalidInput("Catatan penyelesaian tidak boleh dikosongkan untuk keluhan yang selesai")
			}
			patch["complaint_resolution_notes"] = n
		}
		if req.Status != nil {
			if err := applyStatus(m, *req.Status, req.ResolutionNotes, actor, s.Now(), patch); err != nil {
				return err
			}
		}
		return save(tx, m, patch)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("complaint updated", zap.String("complaint_id", id.String()))
	return s.respond(s.DB.WithContext(ctx), id)
}

func (s *ComplaintService) setStatus(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, next model.ComplaintStatus, notes *string) (*dto.ComplaintResponse, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := FindComplaint(tx, id)
		if err != nil {
			return err
		}
		patch := map[string]any{}
		if err := applyStatus(m, next, notes, actor, s.Now(), patch); err != nil {
			return err
		}
		return save(tx, m, patch)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("complaint status changed", zap.String("complaint_id", id.String()), zap.String("status", string(next)))
	return s.respond(s.DB.WithContext(ctx), id)
}

// MarkResolved: catatan wajib (dari request atau yang sudah tersimpan).
func (s *ComplaintService) MarkResolved(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, notes *string) (*dto.ComplaintResponse, error) {
	if err := requireAdmin(actor, "selesaikan keluhan"); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, actor, id, model.StatusResolved, notes)
}

func (s *ComplaintService) Close(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.ComplaintResponse, error) {
	if err := requireAdmin(actor, "tutup keluhan"); err != nil {
		return nil, err
	}
	return s.setStatus(ctx, actor, id, model.StatusClosed, nil)
}

/* ===================== DELETE ===================== */

// Delete (admin): komentar ikut terhapus.
func (s *ComplaintService) Delete(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor, "hapus keluhan"); err != nil {
		return err
	}
	var attachment *string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := FindComplaint(tx, id)
		if err != nil {
			return err
		}
		attachment = m.ComplaintAttachmentURL
		if err := tx.Where("complaint_comment_complaint_id = ?", id).
			Delete(&commentModel.ComplaintCommentModel{}).Error; err != nil {
			return apperror.Internal("Gagal menghapus komentar", err)
		}
		if err := tx.Delete(&model.ComplaintModel{}, "complaint_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Gagal menghapus keluhan")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if attachment != nil && *attachment != "" && s.Files != nil {
		if err := s.Files.Delete(ctx, *attachment); err != nil {
			s.Log.Warn("delete complaint attachment failed", zap.String("ref", *attachment), zap.Error(err))
		}
	}
	s.Log.Info("complaint deleted", zap.String("complaint_id", id.String()))
	return nil
}

/* ===================== ATTACHMENT ===================== */

func (s *ComplaintService) UploadAttachment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, obj storage.Object) (*dto.ComplaintResponse, error) {
	if s.Files == nil {
		return nil, apperror.Internal("Penyimpanan file belum dikonfigurasi", nil)
	}
	db := s.DB.WithContext(ctx)
	m, err := FindComplaint(db, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureCanView(actor, m); err != nil {
		return nil, err
	}

	ref, err := storage.Save(ctx, s.Files, attachmentDir, obj, constants.AttachmentAllowedExt)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&model.ComplaintModel{}).Where("complaint_id = ?", id).
		Update("complaint_attachment_url", ref).Error; err != nil {
		_ = s.Files.Delete(ctx, ref)
		return nil, apperror.Internal("Gagal menyimpan lampiran", err)
	}
	if old := m.ComplaintAttachmentURL; old != nil && *old != "" && *old != ref {
		if err := s.Files.Delete(ctx, *old); err != nil {
			s.Log.Warn("delete old attachment failed", zap.String("ref", *old), zap.Error(err))
		}
	}
	s.Log.Info("complaint attachment uploaded", zap.String("complaint_id", id.String()), zap.String("ref", ref))
	return s.respond(db, id)
}

/* ===================== READ ===================== */

func (s *ComplaintService) Get(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.ComplaintResponse, error) {
	db := s.DB.WithContext(ctx)
	m, err := FindComplaint(db, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureCanView(actor, m); err != nil {
		return nil, err
	}
	var comments []commentModel.ComplaintCommentModel
	if err := db.Preload("User").
		Where("complaint_comment_complaint_id = ?", id).
		Order("complaint_comment_created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil komentar", err)
	}
	out := dto.FromModel(m, int64(len(comments)), s.Now())
	out.Comments = commentDto.FromModelList(comments)
	return &out, nil
}

const (
	priorityRank = "CASE complaint_priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"
	statusRank   = "CASE complaint_status WHEN 'open' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'resolved' THEN 3 ELSE 4 END"
)

var complaintSortColumns = map[string]string{
	"created_at": "complaint_created_at",
	"priority":   priorityRank,
	"status":     statusRank,
}

// List: penyewa hanya melihat keluhannya sendiri.
func (s *ComplaintService) List(ctx context.Context, actor helperAuth.Actor, q dto.ListComplaintsQuery, p helper.Params) ([]dto.ComplaintResponse, int64, error) {
	db := s.DB.WithContext(ctx)
	tx := db.Model(&model.ComplaintModel{})

	if actor.IsPrivileged() {
		if q.TenantID != nil {
			tx = tx.Where("complaint_tenant_id = ?", *q.TenantID)
		}
	} else {
		profile, err := profileService.FindByUserID(db, actor.UserID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return []dto.ComplaintResponse{}, 0, nil
			}
			return nil, 0, err
		}
		tx = tx.Where("complaint_tenant_id = ?", profile.TenantProfileID)
	}
	if q.Status != "" {
		tx = tx.Where("complaint_status = ?", q.Status)
	}
	if q.Category != "" {
		tx = tx.Where("complaint_category = ?", q.Category)
	}
	if q.Priority != "" {
		tx = tx.Where("complaint_priority = ?", q.Priority)
	}
	if q.RoomID != nil {
		tx = tx.Where("complaint_room_id = ?", *q.RoomID)
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("LOWER(complaint_title) LIKE ? OR LOWER(complaint_description) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung keluhan", err)
	}
	order, err := p.OrderClause(complaintSortColumns, "created_at")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}
	var rows []model.ComplaintModel
	if err := tx.Preload("Tenant.User").Preload("Room").Preload("Resolver").
		Order(order).Order("complaint_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil keluhan", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ComplaintID)
	}
	counts, err := commentCounts(db, ids)
	if err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung komentar", err)
	}
	return dto.FromModelList(rows, counts, s.Now()), total, nil
}

/* ===================== STATISTIK ===================== */

func countBy(db *gorm.DB, column string, scope func(*gorm.DB) *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		K string
		N int64
	}
	tx := db.Model(&model.ComplaintModel{})
	if scope != nil {
		tx = scope(tx)
	}
	if err := tx.Select(column + " AS k, COUNT(*) AS n").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, r := range rows {
		out[r.K] = r.N
	}
	return out, nil
}

// OpenCountsByPriority: keluhan yang belum selesai (open/in_progress) per prioritas.
func OpenCountsByPriority(db *gorm.DB) (map[string]int64, error) {
	got, err := countBy(db, "complaint_priority", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("complaint_status IN ?", []model.ComplaintStatus{model.StatusOpen, model.StatusInProgress})
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(model.AllPriorities))
	for _, p := range model.AllPriorities {
		out[string(p)] = got[string(p)]
	}
	return out, nil
}

func (s *ComplaintService) Statistics(ctx context.Context, actor helperAuth.Actor) (*dto.ComplaintStatistics, error) {
	if err := requireAdmin(actor, "statistik keluhan"); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	byStatus, err := countBy(db, "complaint_status", nil)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik keluhan", err)
	}
	byCategory, err := countBy(db, "complaint_category", nil)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik keluhan", err)
	}
	byPriority, err := countBy(db, "complaint_priority", nil)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik keluhan", err)
	}

	out := &dto.ComplaintStatistics{
		OpenComplaints:       byStatus[string(model.StatusOpen)],
		InProgressComplaints: byStatus[string(model.StatusInProgress)],
		ResolvedComplaints:   byStatus[string(model.StatusResolved)],
		ClosedComplaints:     byStatus[string(model.StatusClosed)],
		ByCategory:           map[string]int64{},
		ByPriority:           map[string]int64{},
	}
	for _, n := range byStatus {
		out.TotalComplaints += n
	}
	for _, c := range model.AllCategories {
		out.ByCategory[string(c)] = byCategory[string(c)]
	}
	for _, p := range model.AllPriorities {
		out.ByPriority[string(p)] = byPriority[string(p)]
	}

	var done []model.ComplaintModel
	if err := db.Select("complaint_id", "complaint_created_at", "complaint_resolved_at").
		Where("complaint_status IN ? AND complaint_resolved_at IS NOT NULL",
			[]model.ComplaintStatus{model.StatusResolved, model.StatusClosed}).
		Find(&done).Error; err != nil {
		return nil, apperror.Internal("Gagal menghitung waktu penyelesaian", err)
	}
	if len(done) > 0 {
		days := 0
		for _, c := range done {
			days += int(c.ComplaintResolvedAt.Sub(c.ComplaintCreatedAt).Hours() / 24)
		}
		avg := dto.Round1(float64(days) / float64(len(done)))
		out.AvgResolutionDays = &avg
	}
	return out, nil
}
