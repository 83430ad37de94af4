package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/rooms/rooms/dto"
	"kosan_backend/internals/features/rooms/rooms/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func newSvc(t *testing.T) (*RoomService, helperAuth.Actor) {
	db := testutil.NewTestDB(t)
	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	return NewRoomService(db, zap.NewNop()), helperAuth.AdminActor(admin.ID)
}

func roomReq(number string, t model.RoomType, capacity int) dto.CreateRoomRequest {
	return dto.CreateRoomRequest{
		RoomNumber:     number,
		RoomType:       t,
		RoomFloor:      1,
		RoomCapacity:   capacity,
		RoomPrice:      testutil.Rupiah(1_500_000),
		RoomFacilities: []string{"AC", " wifi ", "ac", ""},
	}
}

func TestCreateRoomNormalisesAndEnforcesUniqueness(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()

	out, err := svc.CreateRoom(ctx, admin, roomReq(" ａ１０２ ", model.RoomTypeSingle, 1))
	require.NoError(t, err)
	assert.Equal(t, "A102", out.RoomNumber)
	assert.Equal(t, model.RoomStatusAvailable, out.RoomStatus)
	assert.Equal(t, []string{"AC", "wifi"}, out.RoomFacilities)

	_, err = svc.CreateRoom(ctx, admin, roomReq("a102", model.RoomTypeSingle, 1))
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCapacityRulesPerType(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, admin, roomReq("B1", model.RoomTypeSingle, 2))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = svc.CreateRoom(ctx, admin, roomReq("B2", model.RoomTypeDouble, 3))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = svc.CreateRoom(ctx, admin, roomReq("B3", model.RoomTypeShared, 11))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	bad := roomReq("B4", model.RoomTypeShared, 4)
	bad.RoomPrice = testutil.Rupiah(0)
	_, err = svc.CreateRoom(ctx, admin, bad)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// update dicek terhadap nilai gabungan
	dbl, err := svc.CreateRoom(ctx, admin, roomReq("B5", model.RoomTypeDouble, 2))
	require.NoError(t, err)
	single := model.RoomTypeSingle
	_, err = svc.UpdateRoom(ctx, admin, dbl.RoomID, dto.UpdateRoomRequest{RoomType: &single})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	one := 1
	out, err := svc.UpdateRoom(ctx, admin, dbl.RoomID, dto.UpdateRoomRequest{RoomType: &single, RoomCapacity: &one})
	require.NoError(t, err)
	assert.Equal(t, model.RoomTypeSingle, out.RoomType)
}

func TestDeleteAndMaintenanceRespectOccupancy(t *testing.T) {
	svc, admin := newSvc(t)
	ctx := context.Background()
	occupied := testutil.SeedRoom(t, svc.DB, "C1", 1_000_000)
	testutil.SeedAssignment(t, svc.DB, testutil.SeedTenant(t, svc.DB, "budi"), occupied, testutil.Date(2024, 1, 1))
	free := testutil.SeedRoom(t, svc.DB, "C2", 1_000_000)

	err := svc.DeleteRoom(ctx, admin, occupied.RoomID)
	assert.ErrorIs(t, err, apperror.ErrPreconditionFailed)

	_, err = svc.SetMaintenance(ctx, admin, occupied.RoomID, true)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.SetMaintenance(ctx, admin, free.RoomID, false)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	out, err := svc.SetMaintenance(ctx, admin, free.RoomID, true)
	require.NoError(t, err)
	assert.Equal(t, model.RoomStatusMaintenance, out.RoomStatus)

	avail, err := svc.ListAvailableRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, avail)

	out, err = svc.SetMaintenance(ctx, admin, free.RoomID, false)
	require.NoError(t, err)
	assert.True(t, out.RoomIsAvailable)

	require.NoError(t, svc.DeleteRoom(ctx, admin, free.RoomID))
	_, err = svc.GetRoom(ctx, free.RoomID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.DeleteRoom(ctx, helperAuth.TenantActor(admin.UserID), occupied.RoomID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestListRoomsFiltersAndSort(t *testing.T) {
	svc, _ := newSvc(t)
	ctx := context.Background()
	testutil.SeedRoom(t, svc.DB, "A101", 1_000_000)
	testutil.SeedRoom(t, svc.DB, "A102", 1_500_000)
	testutil.SeedRoom(t, svc.DB, "B201", 2_000_000)

	minPrice := 1_200_000.0
	rows, total, err := svc.ListRooms(ctx, dto.ListRoomsQuery{MinPrice: &minPrice},
		helper.Params{Page: 1, PerPage: 10, SortBy: "price", SortOrder: "desc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "B201", rows[0].RoomNumber)
	assert.Equal(t, "A102", rows[1].RoomNumber)

	rows, _, err = svc.ListRooms(ctx, dto.ListRoomsQuery{Q: "a10"}, helper.Params{Page: 1, PerPage: 10, SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A101", rows[0].RoomNumber)
}
