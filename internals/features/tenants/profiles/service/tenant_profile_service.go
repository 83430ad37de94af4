package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	"kosan_backend/internals/features/tenants/profiles/dto"
	"kosan_backend/internals/features/tenants/profiles/model"
	userModel "kosan_backend/internals/features/users/user/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

type ProfileService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewProfileService(db *gorm.DB, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{DB: db, Log: log, Now: time.Now}
}

// CreateTenantProfile berjalan di transaksi pemanggil (lihat UserService.CreateTenantUser).
func CreateTenantProfile(tx *gorm.DB, user *userModel.UserModel, fields dto.ProfileFields) (*model.TenantProfileModel, error) {
	if user.Role != constants.RoleTenant {
		return nil, apperror.InvalidInput("Profil penyewa hanya untuk user dengan role tenant")
	}
	p := &model.TenantProfileModel{
		TenantProfileUserID:   user.ID,
		TenantProfileIsActive: user.IsActive,
	}
	fields.ApplyTo(p)
	if err := tx.Create(p).Error; err != nil {
		return nil, apperror.FromDB(err, "Profil penyewa untuk user ini sudah ada")
	}
	p.User = user
	return p, nil
}

// BackfillMissing membuat profil kosong untuk user tenant yang belum punya profil
// (data lama sebelum CreateTenantUser membuat profil sekaligus). Idempoten.
func (s *ProfileService) BackfillMissing(ctx context.Context, actor helperAuth.Actor) ([]*model.TenantProfileModel, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("lengkapi profil penyewa"))
	}
	created := []*model.TenantProfileModel{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []userModel.UserModel
		if err := tx.Where("role = ?", constants.RoleTenant).
			Where("NOT EXISTS (SELECT 1 FROM tenant_profiles tp WHERE tp.tenant_profile_user_id = users.id)").
			Order("created_at ASC").
			Find(&users).Error; err != nil {
			return apperror.Internal("Gagal mengambil user tanpa profil", err)
		}
		for i := range users {
			p, err := CreateTenantProfile(tx, &users[i], dto.ProfileFields{})
			if err != nil {
				return err
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("tenant profiles backfilled", zap.Int("created", len(created)))
	return created, nil
}

// HasCurrentAssignment: penyewa sedang menempati kamar.
func HasCurrentAssignment(tx *gorm.DB, profileID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&assignmentModel.RoomAssignmentModel{}).
		Where("room_assignment_tenant_id = ? AND room_assignment_is_current = ?", profileID, true).
		Count(&n).Error
	return n > 0, err
}

// DeactivateProfileTx: no-op kalau sudah nonaktif; ditolak selama masih menempati kamar.
func DeactivateProfileTx(tx *gorm.DB, p *model.TenantProfileModel) error {
	if !p.TenantProfileIsActive {
		return nil
	}
	busy, err := HasCurrentAssignment(tx, p.TenantProfileID)
	if err != nil {
		return apperror.Internal("Gagal memeriksa penempatan", err)
	}
	if busy {
		return apperror.PreconditionFailed("Penyewa masih menempati kamar, akhiri penempatan terlebih dahulu")
	}
	if err := tx.Model(&model.TenantProfileModel{}).
		Where("tenant_profile_id = ?", p.TenantProfileID).
		Update("tenant_profile_is_active", false).Error; err != nil {
		return apperror.Internal("Gagal menonaktifkan profil", err)
	}
	p.TenantProfileIsActive = false
	return nil
}

func findProfile(db *gorm.DB, where string, arg any) (*model.TenantProfileModel, error) {
	var p model.TenantProfileModel
	if err := db.Preload("User").Where(where, arg).First(&p).Error; err != nil {
		return nil, apperror.FromDB(err, "Profil penyewa tidak ditemukan")
	}
	return &p, nil
}

func FindByID(db *gorm.DB, id uuid.UUID) (*model.TenantProfileModel, error) {
	return findProfile(db, "tenant_profile_id = ?", id)
}

func FindByUserID(db *gorm.DB, userID uuid.UUID) (*model.TenantProfileModel, error) {
	return findProfile(db, "tenant_profile_user_id = ?", userID)
}

// ensureCanView: admin/system atau pemilik profil.
func ensureCanView(actor helperAuth.Actor, p *model.TenantProfileModel) error {
	if actor.IsPrivileged() || p.TenantProfileUserID == actor.UserID {
		return nil
	}
	return apperror.Forbidden("Anda tidak berhak mengakses profil ini")
}

func currentRooms(db *gorm.DB, profileIDs []uuid.UUID) (map[uuid.UUID]*dto.CurrentRoom, error) {
	out := map[uuid.UUID]*dto.CurrentRoom{}
	if len(profileIDs) == 0 {
		return out, nil
	}
	var rows []assignmentModel.RoomAssignmentModel
	if err := db.Preload("Room").
		Where("room_assignment_tenant_id IN ? AND room_assignment_is_current = ?", profileIDs, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		a := &rows[i]
		cr := &dto.CurrentRoom{
			RoomID:       a.RoomAssignmentRoomID,
			AssignmentID: a.RoomAssignmentID,
			MoveInDate:   dbtime.FormatDate(a.RoomAssignmentMoveInDate),
		}
		if a.Room != nil {
			cr.RoomNumber = a.Room.RoomNumber
		}
		out[a.RoomAssignmentTenantID] = cr
	}
	return out, nil
}

func (s *ProfileService) respond(db *gorm.DB, p *model.TenantProfileModel) (*dto.TenantProfileResponse, error) {
	rooms, err := currentRooms(db, []uuid.UUID{p.TenantProfileID})
	if err != nil {
		return nil, apperror.Internal("Gagal mengambil kamar penyewa", err)
	}
	resp := dto.FromModel(p, rooms[p.TenantProfileID])
	return &resp, nil
}

func (s *ProfileService) Get(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.TenantProfileResponse, error) {
	db := s.DB.WithContext(ctx)
	p, err := FindByID(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, p); err != nil {
		return nil, err
	}
	return s.respond(db, p)
}

func (s *ProfileService) GetMine(ctx context.Context, actor helperAuth.Actor) (*dto.TenantProfileResponse, error) {
	db := s.DB.WithContext(ctx)
	p, err := FindByUserID(db, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.respond(db, p)
}

func (s *ProfileService) List(ctx context.Context, actor helperAuth.Actor, q dto.ListTenantProfilesQuery, p helper.Params) ([]dto.TenantProfileResponse, int64, error) {
	if !actor.IsPrivileged() {
		return nil, 0, apperror.Forbidden(constants.RoleErrorAdmin("daftar penyewa"))
	}
	db := s.DB.WithContext(ctx)

	tx := db.Model(&model.TenantProfileModel{}).
		Joins("JOIN users ON users.id = tenant_profiles.tenant_profile_user_id")
	if q.IsActive != nil {
		tx = tx.Where("tenant_profiles.tenant_profile_is_active = ?", *q.IsActive)
	}
	if q.HasAssignment != nil {
		sub := db.Model(&assignmentModel.RoomAssignmentModel{}).Select("1").
			Where("room_assignments.room_assignment_tenant_id = tenant_profiles.tenant_profile_id AND room_assignments.room_assignment_is_current = ?", true)
		if *q.HasAssignment {
			tx = tx.Where("EXISTS (?)", sub)
		} else {
			tx = tx.Where("NOT EXISTS (?)", sub)
		}
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("LOWER(users.full_name) LIKE ? OR LOWER(users.email) LIKE ? OR users.phone LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung penyewa", err)
	}

	order, err := p.OrderClause(map[string]string{
		"created_at": "tenant_profiles.tenant_profile_created_at",
		"name":       "users.full_name",
	}, "created_at")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}

	var rows []model.TenantProfileModel
	if err := tx.Preload("User").Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil penyewa", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].TenantProfileID)
	}
	rooms, err := currentRooms(db, ids)
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil kamar penyewa", err)
	}

	out := make([]dto.TenantProfileResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], rooms[rows[i].TenantProfileID]))
	}
	return out, total, nil
}

// ListActive: penyewa aktif tanpa paging, untuk dropdown admin.
func (s *ProfileService) ListActive(ctx context.Context, actor helperAuth.Actor) ([]dto.TenantProfileResponse, error) {
	active := true
	out, _, err := s.List(ctx, actor, dto.ListTenantProfilesQuery{IsActive: &active},
		helper.Params{Page: 1, PerPage: helper.ExportOpts.AllHardCap, SortBy: "name", SortOrder: "asc"})
	return out, err
}

func (s *ProfileService) Update(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateTenantProfileRequest) (*dto.TenantProfileResponse, error) {
	db := s.DB.WithContext(ctx)
	p, err := FindByID(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, p); err != nil {
		return nil, err
	}
	if patch := req.Patch(); len(patch) > 0 {
		if err := db.Model(&model.TenantProfileModel{}).
			Where("tenant_profile_id = ?", id).
			Updates(patch).Error; err != nil {
			return nil, apperror.FromDB(err, "Gagal memperbarui profil")
		}
		req.ApplyTo(p)
	}
	return s.respond(db, p)
}

func (s *ProfileService) Deactivate(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.TenantProfileResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("nonaktifkan penyewa"))
	}
	var p *model.TenantProfileModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = FindByID(tx, id); err != nil {
			return err
		}
		return DeactivateProfileTx(tx, p)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("tenant profile deactivated", zap.String("tenant_id", id.String()))
	return s.respond(s.DB.WithContext(ctx), p)
}

// Activate mengaktifkan kembali profil (dan user-nya).
func (s *ProfileService) Activate(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.TenantProfileResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("aktifkan penyewa"))
	}
	var p *model.TenantProfileModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = FindByID(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&model.TenantProfileModel{}).
			Where("tenant_profile_id = ?", id).
			Update("tenant_profile_is_active", true).Error; err != nil {
			return err
		}
		return tx.Model(&userModel.UserModel{}).
			Where("id = ?", p.TenantProfileUserID).
			Update("is_active", true).Error
	})
	if err != nil {
		return nil, apperror.FromDB(err, "Gagal mengaktifkan profil")
	}
	p.TenantProfileIsActive = true
	if p.User != nil {
		p.User.IsActive = true
	}
	return s.respond(s.DB.WithContext(ctx), p)
}
