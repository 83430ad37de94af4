package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/constants"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/features/users/user/dto"
	"kosan_backend/internals/features/users/user/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func newSvc(t *testing.T) (*UserService, helperAuth.Actor) {
	db := testutil.NewTestDB(t)
	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	return NewUserService(db, zap.NewNop()), helperAuth.AdminActor(admin.ID)
}

func tenantReq(email string) dto.CreateTenantUserRequest {
	return dto.CreateTenantUserRequest{
		UserName: "budi",
		FullName: "Budi Santoso",
		Email:    email,
		Password: "rahasia123",
	}
}

func TestCreateTenantUserCreatesProfileAtomically(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()

	out, err := svc.CreateTenantUser(ctx, admin, tenantReq("  Budi@Mail.COM "))
	require.NoError(t, err)
	assert.Equal(t, "budi@mail.com", out.User.Email)
	assert.Equal(t, "USR-001", out.User.UserCode)
	assert.Equal(t, constants.RoleTenant, out.User.Role)
	assert.Equal(t, out.User.ID, out.Profile.TenantProfileUserID)

	var u model.UserModel
	require.NoError(t, svc.DB.First(&u, "id = ?", out.User.ID).Error)
	assert.NotEqual(t, "rahasia123", u.Password)

	// email duplikat: tidak ada user maupun profil yatim
	_, err = svc.CreateTenantUser(ctx, admin, tenantReq("budi@mail.com"))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var users, profiles int64
	svc.DB.Model(&model.UserModel{}).Where("role = ?", constants.RoleTenant).Count(&users)
	svc.DB.Model(&profileModel.TenantProfileModel{}).Count(&profiles)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, profiles)
}

func TestCreateUserValidation(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()

	cases := map[string]dto.CreateUserRequest{
		"bad email":  {UserName: "ani", FullName: "Ani", Email: "ani", Password: "rahasia123", Role: "admin"},
		"short pass": {UserName: "ani", FullName: "Ani", Email: "ani@mail.com", Password: "123", Role: "admin"},
		"bad role":   {UserName: "ani", FullName: "Ani", Email: "ani@mail.com", Password: "rahasia123", Role: "owner"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, admin, req)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}

	_, err := svc.CreateUser(ctx, helperAuth.TenantActor(admin.UserID), cases["bad role"])
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCreateUserWithTenantRoleAlsoCreatesProfile(t *testing.T) {
	svc, admin := newSvc(t)
	out, err := svc.CreateUser(context.Background(), admin, dto.CreateUserRequest{
		UserName: "siti", FullName: "Siti", Email: "siti@mail.com", Password: "rahasia123", Role: "tenant",
	})
	require.NoError(t, err)

	var n int64
	svc.DB.Model(&profileModel.TenantProfileModel{}).Where("tenant_profile_user_id = ?", out.ID).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestChangePasswordAndEmail(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()
	res, err := svc.CreateTenantUser(ctx, admin, tenantReq("budi@mail.com"))
	require.NoError(t, err)
	me := helperAuth.TenantActor(res.User.ID)

	err = svc.ChangePassword(ctx, me, dto.ChangePasswordRequest{CurrentPassword: "salah", NewPassword: "passwordbaru"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	err = svc.ChangePassword(ctx, me, dto.ChangePasswordRequest{CurrentPassword: "rahasia123", NewPassword: "pendek"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, me, dto.ChangePasswordRequest{
		CurrentPassword: "rahasia123", NewPassword: "passwordbaru", ConfirmPassword: "passwordbaru",
	}))

	out, err := svc.ChangeEmail(ctx, me, dto.ChangeEmailRequest{NewEmail: "BUDI2@mail.com", CurrentPassword: "passwordbaru"})
	require.NoError(t, err)
	assert.Equal(t, "budi2@mail.com", out.Email)

	other, err := svc.CreateTenantUser(ctx, admin, tenantReq("siti@mail.com"))
	require.NoError(t, err)
	_, err = svc.ChangeEmail(ctx, helperAuth.TenantActor(other.User.ID),
		dto.ChangeEmailRequest{NewEmail: "budi2@mail.com", CurrentPassword: "rahasia123"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestDeactivateUserIsIdempotentAndGuarded(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()

	budi := testutil.SeedTenant(t, svc.DB, "budi")
	testutil.SeedAssignment(t, svc.DB, budi, testutil.SeedRoom(t, svc.DB, "A101", 1_000_000), testutil.Date(2024, 1, 1))
	_, err := svc.DeactivateUser(ctx, admin, budi.TenantProfileUserID)
	assert.ErrorIs(t, err, apperror.ErrPreconditionFailed)

	siti := testutil.SeedTenant(t, svc.DB, "siti")
	out, err := svc.DeactivateUser(ctx, admin, siti.TenantProfileUserID)
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	var p profileModel.TenantProfileModel
	require.NoError(t, svc.DB.First(&p, "tenant_profile_id = ?", siti.TenantProfileID).Error)
	assert.False(t, p.TenantProfileIsActive)

	out, err = svc.DeactivateUser(ctx, admin, siti.TenantProfileUserID)
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	_, err = svc.DeactivateUser(ctx, admin, admin.UserID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListUsersAndAccess(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, svc.DB, "budi")
	siti := testutil.SeedTenant(t, svc.DB, "siti")

	rows, total, err := svc.ListUsers(ctx, admin, dto.ListUsersQuery{Role: constants.RoleTenant}, helper.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	_, err = svc.GetUser(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), siti.TenantProfileUserID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	name := "Budi Baru"
	out, err := svc.UpdateUser(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), budi.TenantProfileUserID, dto.UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Budi Baru", out.FullName)
}
