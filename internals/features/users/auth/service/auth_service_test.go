package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/users/auth/dto"
	authModel "kosan_backend/internals/features/users/auth/model"
	userDto "kosan_backend/internals/features/users/user/dto"
	userModel "kosan_backend/internals/features/users/user/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func newAuth(t *testing.T) *AuthService {
	db := testutil.NewTestDB(t)
	return NewAuthService(db, zap.NewNop(), NewTokenService("test-secret", time.Hour))
}

func register(t *testing.T, svc *AuthService, email string) *userDto.TenantUserResponse {
	t.Helper()
	out, err := svc.Register(context.Background(), dto.RegisterRequest{
		CreateTenantUserRequest: userDto.CreateTenantUserRequest{
			UserName: "budi", FullName: "Budi", Email: email, Password: "rahasia123",
		},
		PasswordConfirm: "rahasia123",
	})
	require.NoError(t, err)
	return out
}

func TestRegisterRequiresMatchingConfirmation(t *testing.T) {
	svc := newAuth(t)
	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		CreateTenantUserRequest: userDto.CreateTenantUserRequest{
			UserName: "budi", FullName: "Budi", Email: "budi@mail.com", Password: "rahasia123",
		},
		PasswordConfirm: "rahasia124",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestLoginIssuesTokenThatAuthenticates(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	reg := register(t, svc, "budi@mail.com")
	assert.Equal(t, constants.RoleTenant, reg.User.Role)

	out, err := svc.Login(ctx, dto.LoginRequest{Email: "BUDI@mail.com ", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)

	claims, err := svc.Authenticate(ctx, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, constants.RoleTenant, claims.Role)

	me, err := svc.Me(ctx, helperAuth.TenantActor(claims.UserID))
	require.NoError(t, err)
	require.NotNil(t, me.TenantProfile)
	assert.Equal(t, reg.Profile.TenantProfileID, me.TenantProfile.TenantProfileID)
}

func TestLoginRejectsBadPasswordAndInactiveUser(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	reg := register(t, svc, "budi@mail.com")

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "budi@mail.com", Password: "salah"})
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusUnauthorized, fe.Code)

	require.NoError(t, svc.DB.Table("users").Where("id = ?", reg.User.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "budi@mail.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()
	register(t, svc, "budi@mail.com")
	out, err := svc.Login(ctx, dto.LoginRequest{Email: "budi@mail.com", Password: "rahasia123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, out.AccessToken))
	require.NoError(t, svc.Logout(ctx, out.AccessToken))

	_, err = svc.Authenticate(ctx, out.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// cleanup setelah exp lewat
	n, err := svc.CleanupBlacklist(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	var left int64
	svc.DB.Model(&authModel.TokenBlacklist{}).Count(&left)
	assert.Zero(t, left)
}

func TestTokenExpiry(t *testing.T) {
	svc := newAuth(t)
	reg := register(t, svc, "budi@mail.com")
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.Tokens.Now = func() time.Time { return now }

	tok, _, err := svc.Tokens.Issue(&userModel.UserModel{ID: reg.User.ID, Role: constants.RoleTenant})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.Tokens.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewTokenService("lain", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
