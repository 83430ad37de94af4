// Package testutil menyiapkan database SQLite in-memory dengan skema produksi.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kosan_backend/internals/constants"
	database "kosan_backend/internals/databases"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	userModel "kosan_backend/internals/features/users/user/model"
)

// NewTestDB: satu koneksi supaya transaksi berjalan serial dan :memory: tidak terpecah.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

// FixedClock mengembalikan fungsi Now yang selalu menunjuk t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Date: tanggal kalender sebagai UTC midnight.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Rupiah(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// SeedUser membuat user langsung di DB (tanpa service).
func SeedUser(t *testing.T, db *gorm.DB, name, role string) *userModel.UserModel {
	t.Helper()
	u := &userModel.UserModel{
		UserCode: "T-" + uuid.NewString()[:8],
		UserName: name,
		FullName: name,
		Email:    fmt.Sprintf("%s-%s@test.com", name, uuid.NewString()[:6]),
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedTenant membuat user tenant + profil aktif.
func SeedTenant(t *testing.T, db *gorm.DB, name string) *profileModel.TenantProfileModel {
	t.Helper()
	u := SeedUser(t, db, name, constants.RoleTenant)
	p := &profileModel.TenantProfileModel{
		TenantProfileUserID:   u.ID,
		TenantProfileIsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	p.User = u
	return p
}

func SeedRoom(t *testing.T, db *gorm.DB, number string, price int64) *roomModel.RoomModel {
	t.Helper()
	r := &roomModel.RoomModel{
		RoomNumber:   number,
		RoomType:     roomModel.RoomTypeSingle,
		RoomFloor:    1,
		RoomCapacity: 1,
		RoomPrice:    decimal.NewFromInt(price),
		RoomStatus:   roomModel.RoomStatusAvailable,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

// SeedAssignment menempatkan penyewa di kamar (current) dan menandai kamar occupied.
func SeedAssignment(t *testing.T, db *gorm.DB, tenant *profileModel.TenantProfileModel, room *roomModel.RoomModel, moveIn time.Time) *assignmentModel.RoomAssignmentModel {
	t.Helper()
	a := &assignmentModel.RoomAssignmentModel{
		RoomAssignmentCode:        "ASN-" + uuid.NewString()[:8],
		RoomAssignmentTenantID:    tenant.TenantProfileID,
		RoomAssignmentRoomID:      room.RoomID,
		RoomAssignmentMoveInDate:  moveIn,
		RoomAssignmentIsCurrent:   true,
		RoomAssignmentMonthlyRent: room.RoomPrice,
	}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Model(&roomModel.RoomModel{}).
		Where("room_id = ?", room.RoomID).
		Update("room_status", roomModel.RoomStatusOccupied).Error)
	room.RoomStatus = roomModel.RoomStatusOccupied
	return a
}
