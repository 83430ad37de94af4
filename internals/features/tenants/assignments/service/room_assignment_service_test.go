package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	"kosan_backend/internals/features/tenants/assignments/dto"
	"kosan_backend/internals/features/tenants/assignments/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

var now = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func newSvc(t *testing.T) (*AssignmentService, *gorm.DB, helperAuth.Actor) {
	db := testutil.NewTestDB(t)
	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	svc := NewAssignmentService(db, zap.NewNop())
	svc.Now = testutil.FixedClock(now)
	return svc, db, helperAuth.AdminActor(admin.ID)
}

func roomStatus(t *testing.T, db *gorm.DB, r *roomModel.RoomModel) roomModel.RoomStatus {
	var m roomModel.RoomModel
	require.NoError(t, db.First(&m, "room_id = ?", r.RoomID).Error)
	return m.RoomStatus
}

func strPtr(s string) *string { return &s }

func TestAssignRoomDefaultsRentAndOccupiesRoom(t *testing.T) {
	svc, db, admin := newSvc(t)
	tenant := testutil.SeedTenant(t, db, "budi")
	room := testutil.SeedRoom(t, db, "A102", 1_500_000)

	out, err := svc.AssignRoom(context.Background(), admin, dto.AssignRoomRequest{
		TenantID:   tenant.TenantProfileID,
		RoomID:     room.RoomID,
		MoveInDate: "2025-06-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "ASN-001", out.RoomAssignmentCode)
	assert.True(t, out.MonthlyRent.Equal(decimal.NewFromInt(1_500_000)))
	assert.Equal(t, "A102", out.RoomNumber)
	assert.Equal(t, 9, out.DurationDays)
	assert.Equal(t, 0.3, out.DurationMonths)
	assert.Equal(t, roomModel.RoomStatusOccupied, roomStatus(t, db, room))
}

func TestAssignRoomExclusivity(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")
	a102 := testutil.SeedRoom(t, db, "A102", 1_500_000)
	a103 := testutil.SeedRoom(t, db, "A103", 1_500_000)

	_, err := svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: budi.TenantProfileID, RoomID: a102.RoomID, MoveInDate: "2025-06-01"})
	require.NoError(t, err)

	// kamar sudah terisi
	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: sari.TenantProfileID, RoomID: a102.RoomID, MoveInDate: "2025-06-02"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.CodeRoomOccupied, err.(*apperror.Error).Code)

	// penyewa sudah punya kamar
	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: budi.TenantProfileID, RoomID: a103.RoomID, MoveInDate: "2025-06-02"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.CodeTenantHasAssignment, err.(*apperror.Error).Code)

	// kamar maintenance
	require.NoError(t, db.Model(a103).Update("room_status", roomModel.RoomStatusMaintenance).Error)
	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: sari.TenantProfileID, RoomID: a103.RoomID, MoveInDate: "2025-06-02"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.CodeRoomNotAvailable, err.(*apperror.Error).Code)

	var n int64
	db.Model(&model.RoomAssignmentModel{}).Where("room_assignment_is_current = ?", true).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestAssignRoomValidation(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	tenant := testutil.SeedTenant(t, db, "budi")
	room := testutil.SeedRoom(t, db, "A102", 1_500_000)

	_, err := svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{
		TenantID: tenant.TenantProfileID, RoomID: room.RoomID,
		MoveInDate: "2025-06-01", LeaseEndDate: strPtr("2025-05-31"),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidDate)

	zero := decimal.Zero
	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{
		TenantID: tenant.TenantProfileID, RoomID: room.RoomID,
		MoveInDate: "2025-06-01", MonthlyRent: &zero,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	require.NoError(t, db.Model(tenant).Update("tenant_profile_is_active", false).Error)
	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: tenant.TenantProfileID, RoomID: room.RoomID, MoveInDate: "2025-06-01"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.AssignRoom(ctx, helperAuth.TenantActor(tenant.TenantProfileUserID), dto.AssignRoomRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	assert.Equal(t, roomModel.RoomStatusAvailable, roomStatus(t, db, room))
}

func TestConcurrentAssignSameRoomOnlyOneWins(t *testing.T) {
	svc, db, admin := newSvc(t)
	room := testutil.SeedRoom(t, db, "A102", 1_500_000)

	const n = 5
	tenants := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		tenants = append(tenants, testutil.SeedTenant(t, db, "t").TenantProfileID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := dto.AssignRoomRequest{TenantID: tenants[i], RoomID: room.RoomID, MoveInDate: "2025-06-01"}
			if _, err := svc.AssignRoom(context.Background(), admin, req); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, apperror.ErrConflict)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestEndAssignmentFreesRoomForNextTenant(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")
	room := testutil.SeedRoom(t, db, "A102", 1_500_000)
	a := testutil.SeedAssignment(t, db, budi, room, testutil.Date(2025, time.January, 1))

	_, err := svc.EndAssignment(ctx, admin, a.RoomAssignmentID, dto.EndAssignmentRequest{MoveOutDate: strPtr("2024-12-31")})
	assert.ErrorIs(t, err, apperror.ErrInvalidDate)

	out, err := svc.EndAssignment(ctx, admin, a.RoomAssignmentID, dto.EndAssignmentRequest{})
	require.NoError(t, err)
	assert.False(t, out.IsCurrent)
	require.NotNil(t, out.MoveOutDate)
	assert.Equal(t, "2025-06-10", *out.MoveOutDate)
	assert.Equal(t, 160, out.DurationDays)
	assert.Equal(t, roomModel.RoomStatusAvailable, roomStatus(t, db, room))

	_, err = svc.EndAssignment(ctx, admin, a.RoomAssignmentID, dto.EndAssignmentRequest{})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.AssignRoom(ctx, admin, dto.AssignRoomRequest{TenantID: sari.TenantProfileID, RoomID: room.RoomID, MoveInDate: "2025-06-11"})
	require.NoError(t, err)

	hist, err := svc.TenantHistory(ctx, admin, budi.TenantProfileID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.False(t, hist[0].IsCurrent)
}

func TestChangeRoom(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, db, "budi")
	a102 := testutil.SeedRoom(t, db, "A102", 1_500_000)
	b201 := testutil.SeedRoom(t, db, "B201", 2_000_000)
	testutil.SeedAssignment(t, db, budi, a102, testutil.Date(2025, time.January, 1))

	_, err := svc.ChangeRoom(ctx, admin, budi.TenantProfileID, dto.ChangeRoomRequest{NewRoomID: a102.RoomID})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	out, err := svc.ChangeRoom(ctx, admin, budi.TenantProfileID, dto.ChangeRoomRequest{NewRoomID: b201.RoomID, MoveInDate: strPtr("2025-06-01")})
	require.NoError(t, err)
	assert.Equal(t, "B201", out.RoomNumber)
	assert.True(t, out.MonthlyRent.Equal(decimal.NewFromInt(2_000_000)))
	assert.Equal(t, roomModel.RoomStatusAvailable, roomStatus(t, db, a102))
	assert.Equal(t, roomModel.RoomStatusOccupied, roomStatus(t, db, b201))

	hist, err := svc.TenantHistory(ctx, admin, budi.TenantProfileID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "B201", hist[0].RoomNumber)
	require.NotNil(t, hist[1].MoveOutDate)
	assert.Equal(t, "2025-06-01", *hist[1].MoveOutDate)
}

func TestChangeRoomRollsBackWhenTargetUnavailable(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, db, "budi")
	a102 := testutil.SeedRoom(t, db, "A102", 1_500_000)
	b201 := testutil.SeedRoom(t, db, "B201", 2_000_000)
	testutil.SeedAssignment(t, db, budi, a102, testutil.Date(2025, time.January, 1))
	require.NoError(t, db.Model(b201).Update("room_status", roomModel.RoomStatusMaintenance).Error)

	_, err := svc.ChangeRoom(ctx, admin, budi.TenantProfileID, dto.ChangeRoomRequest{NewRoomID: b201.RoomID})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	cur, err := svc.CurrentByRoom(ctx, a102.RoomID)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.IsCurrent)
	assert.Nil(t, cur.MoveOutDate)
	assert.Equal(t, roomModel.RoomStatusOccupied, roomStatus(t, db, a102))
}

func TestReadsRespectOwnership(t *testing.T) {
	svc, db, admin := newSvc(t)
	ctx := context.Background()
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")
	a102 := testutil.SeedRoom(t, db, "A102", 1_500_000)
	a103 := testutil.SeedRoom(t, db, "A103", 1_500_000)
	a := testutil.SeedAssignment(t, db, budi, a102, testutil.Date(2025, time.March, 1))
	testutil.SeedAssignment(t, db, sari, a103, testutil.Date(2025, time.April, 1))

	budiActor := helperAuth.TenantActor(budi.TenantProfileUserID)
	_, err := svc.GetAssignment(ctx, budiActor, a.RoomAssignmentID)
	require.NoError(t, err)
	_, err = svc.TenantHistory(ctx, budiActor, sari.TenantProfileID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	p := helper.Params{Page: 1, PerPage: 20, SortBy: "move_in_date", SortOrder: "asc"}
	rows, total, err := svc.ListAssignments(ctx, budiActor, dto.ListAssignmentsQuery{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "A102", rows[0].RoomNumber)

	rows, total, err = svc.ListAssignments(ctx, admin, dto.ListAssignmentsQuery{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "budi", rows[0].TenantName)

	empty := testutil.SeedRoom(t, db, "C301", 1_000_000)
	cur, err := svc.CurrentByRoom(ctx, empty.RoomID)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func currentRow(tenantID, roomID uuid.UUID, code string) *model.RoomAssignmentModel {
	return &model.RoomAssignmentModel{
		RoomAssignmentCode:        code,
		RoomAssignmentTenantID:    tenantID,
		RoomAssignmentRoomID:      roomID,
		RoomAssignmentMoveInDate:  testutil.Date(2025, time.June, 1),
		RoomAssignmentIsCurrent:   true,
		RoomAssignmentMonthlyRent: decimal.NewFromInt(1_500_000),
	}
}

func TestCurrentAssignmentIndexesRejectSecondRow(t *testing.T) {
	_, db, _ := newSvc(t)
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")
	a1 := testutil.SeedRoom(t, db, "A1", 1_500_000)
	a2 := testutil.SeedRoom(t, db, "A2", 1_500_000)
	testutil.SeedAssignment(t, db, budi, a1, testutil.Date(2025, time.January, 1))

	// kamar yang sama, penyewa lain
	err := db.Create(currentRow(sari.TenantProfileID, a1.RoomID, "X-1")).Error
	require.Error(t, err)
	assert.True(t, apperror.IsUniqueViolation(err))

	// penyewa yang sama, kamar lain
	err = db.Create(currentRow(budi.TenantProfileID, a2.RoomID, "X-2")).Error
	require.Error(t, err)
	assert.True(t, apperror.IsUniqueViolation(err))

	// index parsial: riwayat (is_current=false) tidak dibatasi
	past := currentRow(budi.TenantProfileID, a1.RoomID, "X-3")
	past.RoomAssignmentIsCurrent = false
	require.NoError(t, db.Create(past).Error)

	var n int64
	db.Model(&model.RoomAssignmentModel{}).
		Where("room_assignment_room_id = ? AND room_assignment_is_current = ?", a1.RoomID, true).Count(&n)
	assert.EqualValues(t, 1, n)
}

// Penempatan lain masuk di antara pengecekan dan insert: constraint yang menentukan.
func TestAssignRoomMapsLostRaceToConflict(t *testing.T) {
	svc, db, admin := newSvc(t)
	budi := testutil.SeedTenant(t, db, "budi")
	rival := testutil.SeedTenant(t, db, "rival")
	room := testutil.SeedRoom(t, db, "A1", 1_500_000)

	var (
		fired    bool
		rivalErr error
	)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:rival_assignment", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "room_assignments" {
			return
		}
		fired = true
		rivalErr = tx.Session(&gorm.Session{NewDB: true}).
			Create(currentRow(rival.TenantProfileID, room.RoomID, "RIVAL-1")).Error
	}))

	_, err := svc.AssignRoom(context.Background(), admin, dto.AssignRoomRequest{
		TenantID:   budi.TenantProfileID,
		RoomID:     room.RoomID,
		MoveInDate: "2025-06-01",
	})
	require.True(t, fired)
	require.NoError(t, rivalErr)
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.CodeRoomOccupied, err.(*apperror.Error).Code)

	// transaksi gagal di-rollback seluruhnya
	var n int64
	db.Model(&model.RoomAssignmentModel{}).Where("room_assignment_room_id = ?", room.RoomID).Count(&n)
	assert.Zero(t, n)
	assert.Equal(t, roomModel.RoomStatusAvailable, roomStatus(t, db, room))
}
