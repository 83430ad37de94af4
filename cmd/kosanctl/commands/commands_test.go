package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	paymentModel "kosan_backend/internals/features/payments/payments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/testutil"
)

func run(t *testing.T, db *gorm.DB, args ...string) string {
	t.Helper()
	env := &Env{
		Log:    zap.NewNop(),
		OpenDB: func(*zap.Logger) (*gorm.DB, error) { return db, nil },
	}
	root := newRootCommand(env)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestGeneratePaymentsDryRunThenCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	tenant := testutil.SeedTenant(t, db, "budi")
	room := testutil.SeedRoom(t, db, "A1", 1500000)
	testutil.SeedAssignment(t, db, tenant, room, testutil.Date(2025, 1, 5))

	out := run(t, db, "generate-payments", "--month", "6", "--year", "2025", "--due-day", "10", "--dry-run")
	assert.Contains(t, out, "1 tagihan akan dibuat (dry-run)")

	var n int64
	db.Model(&paymentModel.PaymentModel{}).Count(&n)
	assert.Zero(t, n)

	out = run(t, db, "generate-payments", "--month", "6", "--year", "2025", "--due-day", "10")
	assert.Contains(t, out, "1 tagihan dibuat, 0 dilewati")
	assert.Contains(t, out, "1500000.00")
	assert.Contains(t, out, "2025-06-10")

	out = run(t, db, "generate-payments", "--month", "6", "--year", "2025")
	assert.Contains(t, out, "0 tagihan dibuat, 1 dilewati")

	db.Model(&paymentModel.PaymentModel{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestGeneratePaymentsRejectsBadMonth(t *testing.T) {
	db := testutil.NewTestDB(t)
	env := &Env{
		Log:    zap.NewNop(),
		OpenDB: func(*zap.Logger) (*gorm.DB, error) { return db, nil },
	}
	root := newRootCommand(env)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"generate-payments", "--month", "13", "--year", "2025"})
	assert.Error(t, root.Execute())
}

func TestMigrateAndCleanup(t *testing.T) {
	db := testutil.NewTestDB(t)
	run(t, db, "migrate")
	out := run(t, db, "deactivate-expired-tokens")
	assert.Contains(t, out, "0 token kedaluwarsa dihapus")
}

func TestBackfillProfiles(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	testutil.SeedUser(t, db, "lama", constants.RoleTenant)
	testutil.SeedTenant(t, db, "budi")

	out := run(t, db, "backfill-profiles")
	assert.Contains(t, out, "1 profil penyewa dibuat")
	assert.Contains(t, out, "lama")

	out = run(t, db, "backfill-profiles")
	assert.Contains(t, out, "0 profil penyewa dibuat")

	var n int64
	db.Model(&profileModel.TenantProfileModel{}).Count(&n)
	assert.EqualValues(t, 2, n)
}
