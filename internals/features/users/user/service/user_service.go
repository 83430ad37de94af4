package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	profileDto "kosan_backend/internals/features/tenants/profiles/dto"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	authHelper "kosan_backend/internals/features/users/auth/helper"
	"kosan_backend/internals/features/users/user/dto"
	"kosan_backend/internals/features/users/user/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/sequence"
)

const msgEmailTaken = "Email sudah terdaftar"

type UserService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{DB: db, Log: log, Now: time.Now}
}

func checkCreate(req *dto.CreateUserRequest) error {
	req.Normalize()
	switch {
	case req.UserName == "" || req.FullName == "":
		return apperror.InvalidInput("Nama wajib diisi")
	case !authHelper.IsValidEmail(req.Email):
		return apperror.InvalidInput("Format email tidak valid")
	case len(req.Password) < authHelper.MinPasswordLength:
		return apperror.InvalidInput("Password minimal 8 karakter")
	case !constants.IsValidRole(req.Role):
		return apperror.InvalidInput("Role harus admin atau tenant")
	case req.Phone != nil && !authHelper.IsValidPhone(*req.Phone):
		return apperror.InvalidInput("Nomor telepon hanya boleh berisi angka, spasi, +, -, dan kurung")
	}
	return nil
}

// createUserTx: kode USR-xxx diambil dari counter di transaksi yang sama.
func createUserTx(tx *gorm.DB, req dto.CreateUserRequest) (*model.UserModel, error) {
	if err := checkCreate(&req); err != nil {
		return nil, err
	}
	hash, err := authHelper.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("Gagal memproses password", err)
	}
	code, err := sequence.NextCode(tx, sequence.User)
	if err != nil {
		return nil, apperror.Internal("Gagal membuat kode user", err)
	}
	u := &model.UserModel{
		UserCode: code,
		UserName: req.UserName,
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: true,
	}
	if err := tx.Create(u).Error; err != nil {
		return nil, apperror.FromDB(err, msgEmailTaken)
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, actor helperAuth.Actor, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("tambah user"))
	}
	if req.Role == constants.RoleTenant {
		// tenant selalu dibuat bersama profilnya
		res, err := s.CreateTenantUser(ctx, actor, dto.CreateTenantUserRequest{
			UserName: req.UserName, FullName: req.FullName, Email: req.Email,
			Password: req.Password, Phone: req.Phone,
		})
		if err != nil {
			return nil, err
		}
		return &res.User, nil
	}

	var u *model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		u, err = createUserTx(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("user created", zap.String("user_code", u.UserCode), zap.String("role", u.Role))
	out := dto.FromModel(u)
	return &out, nil
}

// CreateTenantUser membuat user tenant dan profilnya dalam satu transaksi.
// Dipakai admin dan registrasi mandiri (actor system).
func (s *UserService) CreateTenantUser(ctx context.Context, actor helperAuth.Actor, req dto.CreateTenantUserRequest) (*dto.TenantUserResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("tambah penyewa"))
	}
	var out dto.TenantUserResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := createUserTx(tx, req.UserRequest())
		if err != nil {
			return err
		}
		p, err := profileService.CreateTenantProfile(tx, u, req.ProfileFields)
		if err != nil {
			return err
		}
		out.User = dto.FromModel(u)
		out.Profile = profileDto.FromModel(p, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("tenant registered", zap.String("user_code", out.User.UserCode))
	return &out, nil
}

func (s *UserService) find(db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "User tidak ditemukan")
	}
	return &u, nil
}

func canAccess(actor helperAuth.Actor, id uuid.UUID) error {
	if actor.IsPrivileged() || actor.UserID == id {
		return nil
	}
	return apperror.Forbidden("Anda tidak berhak mengakses user ini")
}

func (s *UserService) GetUser(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.UserResponse, error) {
	if err := canAccess(actor, id); err != nil {
		return nil, err
	}
	u, err := s.find(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(u)
	return &out, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor helperAuth.Actor, q dto.ListUsersQuery, p helper.Params) ([]dto.UserResponse, int64, error) {
	if !actor.IsPrivileged() {
		return nil, 0, apperror.Forbidden(constants.RoleErrorAdmin("daftar user"))
	}
	tx := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("LOWER(user_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung user", err)
	}
	order, err := p.OrderClause(map[string]string{
		"created_at": "created_at",
		"name":       "full_name",
		"email":      "email",
		"code":       "user_code",
	}, "created_at")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}

	var users []model.UserModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&users).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data pengguna", err)
	}
	return dto.FromModelList(users), total, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := canAccess(actor, id); err != nil {
		return nil, err
	}
	patch := map[string]any{}
	if req.UserName != nil {
		v := strings.TrimSpace(*req.UserName)
		if len(v) < 3 {
			return nil, apperror.InvalidInput("Username minimal 3 karakter")
		}
		patch["user_name"] = v
	}
	if req.FullName != nil {
		v := strings.TrimSpace(*req.FullName)
		if v == "" {
			return nil, apperror.InvalidInput("Nama lengkap wajib diisi")
		}
		patch["full_name"] = v
	}
	if req.Phone != nil {
		v := strings.TrimSpace(*req.Phone)
		switch {
		case v == "":
			patch["phone"] = nil
		case !authHelper.IsValidPhone(v):
			return nil, apperror.InvalidInput("Nomor telepon hanya boleh berisi angka, spasi, +, -, dan kurung")
		default:
			patch["phone"] = v
		}
	}

	db := s.DB.WithContext(ctx)
	if _, err := s.find(db, id); err != nil {
		return nil, err
	}
	if len(patch) > 0 {
		if err := db.Model(&model.UserModel{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return nil, apperror.FromDB(err, "Gagal memperbarui user")
		}
	}
	return s.GetUser(ctx, actor, id)
}

// ChangeEmail butuh password saat ini.
func (s *UserService) ChangeEmail(ctx context.Context, actor helperAuth.Actor, req dto.ChangeEmailRequest) (*dto.UserResponse, error) {
	db := s.DB.WithContext(ctx)
	u, err := s.find(db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if authHelper.CheckPasswordHash(u.Password, req.CurrentPassword) != nil {
		return nil, apperror.InvalidInput("Password saat ini salah")
	}
	email := authHelper.NormalizeEmail(req.NewEmail)
	if !authHelper.IsValidEmail(email) {
		return nil, apperror.InvalidInput("Format email tidak valid")
	}
	if email != u.Email {
		if err := db.Model(&model.UserModel{}).Where("id = ?", u.ID).Update("email", email).Error; err != nil {
			return nil, apperror.FromDB(err, msgEmailTaken)
		}
		u.Email = email
	}
	out := dto.FromModel(u)
	return &out, nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor helperAuth.Actor, req dto.ChangePasswordRequest) error {
	db := s.DB.WithContext(ctx)
	u, err := s.find(db, actor.UserID)
	if err != nil {
		return err
	}
	if authHelper.CheckPasswordHash(u.Password, req.CurrentPassword) != nil {
		return apperror.InvalidInput("Password saat ini salah")
	}
	if len(req.NewPassword) < authHelper.MinPasswordLength {
		return apperror.InvalidInput("Password minimal 8 karakter")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		return apperror.InvalidInput("Konfirmasi password tidak cocok")
	}
	hash, err := authHelper.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal("Gagal memproses password", err)
	}
	if err := db.Model(&model.UserModel{}).Where("id = ?", u.ID).Update("password", hash).Error; err != nil {
		return apperror.Internal("Gagal memperbarui password", err)
	}
	return nil
}

// DeactivateUser menonaktifkan akun (dan profil tenant-nya). Sudah nonaktif = sukses.
func (s *UserService) DeactivateUser(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.UserResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("nonaktifkan user"))
	}
	if actor.UserID == id {
		return nil, apperror.InvalidInput("Tidak bisa menonaktifkan akun sendiri")
	}
	var u *model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if u, err = s.find(tx, id); err != nil {
			return err
		}
		if !u.IsActive {
			return nil
		}
		if u.Role == constants.RoleTenant {
			p, err := profileService.FindByUserID(tx, u.ID)
			if err != nil && !errors.Is(err, apperror.ErrNotFound) {
				return err
			}
			if p != nil {
				if err := profileService.DeactivateProfileTx(tx, p); err != nil {
					return err
				}
			}
		}
		if err := tx.Model(&model.UserModel{}).Where("id = ?", u.ID).Update("is_active", false).Error; err != nil {
			return apperror.Internal("Gagal menonaktifkan user", err)
		}
		u.IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("user deactivated", zap.String("user_id", id.String()))
	out := dto.FromModel(u)
	return &out, nil
}
