package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	authHelper "kosan_backend/internals/features/users/auth/helper"
	"kosan_backend/internals/features/users/auth/dto"
	authRepo "kosan_backend/internals/features/users/auth/repository"
	userDto "kosan_backend/internals/features/users/user/dto"
	userService "kosan_backend/internals/features/users/user/service"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
)

const msgBadCredentials = "Email atau password salah"

type AuthService struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Users    *userService.UserService
	Profiles *profileService.ProfileService
	Tokens   *TokenService
}

func NewAuthService(db *gorm.DB, log *zap.Logger, tokens *TokenService) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		DB:       db,
		Log:      log,
		Users:    userService.NewUserService(db, log),
		Profiles: profileService.NewProfileService(db, log),
		Tokens:   tokens,
	}
}

// Register: pendaftaran mandiri penyewa.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*userDto.TenantUserResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperror.InvalidInput("Konfirmasi password tidak cocok")
	}
	return s.Users.CreateTenantUser(ctx, helperAuth.SystemActor(), req.CreateTenantUserRequest)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	db := s.DB.WithContext(ctx)
	user, err := authRepo.FindUserByEmail(db, authHelper.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}
		return nil, apperror.Internal("Gagal mengambil data user", err)
	}
	if authHelper.CheckPasswordHash(user.Password, req.Password) != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("Akun Anda telah dinonaktifkan. Hubungi admin.")
	}

	token, exp, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal("Gagal membuat token", err)
	}
	s.Log.Info("login", zap.String("user_code", user.UserCode), zap.String("role", user.Role))
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        userDto.FromModel(user),
	}, nil
}

// Logout memasukkan token ke blacklist sampai exp-nya lewat. Token kosong = no-op.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	expiredAt := s.Tokens.Now().Add(s.Tokens.TTL)
	if claims, err := s.Tokens.Parse(raw); err == nil {
		expiredAt = claims.ExpiresAt
	} else if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err := authRepo.BlacklistToken(s.DB.WithContext(ctx), raw, expiredAt); err != nil {
		return apperror.Internal("Gagal logout", err)
	}
	return nil
}

// Authenticate dipakai middleware: verifikasi token, blacklist, dan status user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*AccessClaims, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	revoked, err := authRepo.IsTokenBlacklisted(db, raw)
	if err != nil {
		return nil, apperror.Internal("Gagal memeriksa token", err)
	}
	if revoked {
		return nil, ErrTokenInvalid
	}
	active, err := authRepo.IsUserActive(db, claims.UserID)
	if err != nil {
		return nil, apperror.Internal("Gagal memeriksa user", err)
	}
	if !active {
		return nil, apperror.Forbidden("Akun Anda telah dinonaktifkan")
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, actor helperAuth.Actor) (*dto.MeResponse, error) {
	u, err := s.Users.GetUser(ctx, actor, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := &dto.MeResponse{User: *u}
	if u.Role == constants.RoleTenant {
		p, err := s.Profiles.GetMine(ctx, actor)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		out.TenantProfile = p
	}
	return out, nil
}

// CleanupBlacklist menghapus token yang sudah lewat exp.
func (s *AuthService) CleanupBlacklist(ctx context.Context, now time.Time) (int64, error) {
	return authRepo.CleanupExpiredBlacklist(s.DB.WithContext(ctx), now)
}
