package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/constants"
	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	paymentModel "kosan_backend/internals/features/payments/payments/model"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func TestDashboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewDashboardService(db, zap.NewNop())
	svc.Now = testutil.FixedClock(time.Date(2025, time.June, 10, 2, 0, 0, 0, time.UTC))

	admin := helperAuth.AdminActor(testutil.SeedUser(t, db, "admin", constants.RoleAdmin).ID)
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")
	old := testutil.SeedTenant(t, db, "lama")
	require.NoError(t, db.Model(&profileModel.TenantProfileModel{}).
		Where("tenant_profile_id = ?", old.TenantProfileID).
		Update("tenant_profile_is_active", false).Error)

	a102 := testutil.SeedRoom(t, db, "A102", 1_500_000)
	testutil.SeedRoom(t, db, "A103", 1_500_000)
	b201 := testutil.SeedRoom(t, db, "B201", 2_000_000)
	testutil.SeedRoom(t, db, "B202", 2_000_000)
	require.NoError(t, db.Model(&roomModel.RoomModel{}).Where("room_id = ?", b201.RoomID).
		Update("room_status", roomModel.RoomStatusMaintenance).Error)
	testutil.SeedAssignment(t, db, budi, a102, testutil.Date(2025, time.January, 1))

	paid := testutil.Date(2025, time.June, 3)
	for _, p := range []paymentModel.PaymentModel{
		{PaymentCode: "PAY-001", PaymentTenantID: budi.TenantProfileID, PaymentPeriodMonth: 6, PaymentPeriodYear: 2025,
			PaymentDueDate: testutil.Date(2025, time.June, 5), PaymentStatus: paymentModel.PaymentStatusPaid, PaymentPaymentDate: &paid},
		{PaymentCode: "PAY-002", PaymentTenantID: sari.TenantProfileID, PaymentPeriodMonth: 6, PaymentPeriodYear: 2025,
			PaymentDueDate: testutil.Date(2025, time.June, 15), PaymentStatus: paymentModel.PaymentStatusPending},
		{PaymentCode: "PAY-003", PaymentTenantID: sari.TenantProfileID, PaymentPeriodMonth: 5, PaymentPeriodYear: 2025,
			PaymentDueDate: testutil.Date(2025, time.May, 5), PaymentStatus: paymentModel.PaymentStatusPending},
	} {
		p := p
		p.PaymentAmount = testutil.Rupiah(1_500_000)
		p.PaymentBankName = "Bank BCA"
		p.PaymentBankAccountName = "Kosan"
		require.NoError(t, db.Create(&p).Error)
	}

	for _, c := range []struct {
		prio   complaintModel.ComplaintPriority
		status complaintModel.ComplaintStatus
	}{
		{complaintModel.PriorityUrgent, complaintModel.StatusOpen},
		{complaintModel.PriorityUrgent, complaintModel.StatusInProgress},
		{complaintModel.PriorityLow, complaintModel.StatusOpen},
		{complaintModel.PriorityHigh, complaintModel.StatusClosed},
	} {
		require.NoError(t, db.Create(&complaintModel.ComplaintModel{
			ComplaintTenantID:    budi.TenantProfileID,
			ComplaintTitle:       "Keluhan uji",
			ComplaintDescription: "Deskripsi keluhan uji",
			ComplaintCategory:    complaintModel.CategoryOther,
			ComplaintPriority:    c.prio,
			ComplaintStatus:      c.status,
		}).Error)
	}

	out, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)

	assert.EqualValues(t, 4, out.Rooms.Total)
	assert.EqualValues(t, 2, out.Rooms.Available)
	assert.EqualValues(t, 1, out.Rooms.Occupied)
	assert.EqualValues(t, 1, out.Rooms.Maintenance)
	assert.InDelta(t, 25.0, out.Rooms.OccupancyRate, 0.001)

	assert.EqualValues(t, 2, out.ActiveTenants)
	assert.EqualValues(t, 1, out.CurrentAssignments)

	assert.Equal(t, "Juni 2025", out.Payments.PeriodLabel)
	assert.EqualValues(t, 1, out.Payments.PaidCount)
	assert.EqualValues(t, 1, out.Payments.PendingCount)
	assert.True(t, out.Payments.Revenue.Equal(testutil.Rupiah(1_500_000)))
	assert.EqualValues(t, 1, out.Payments.OverdueCount)

	assert.EqualValues(t, 3, out.OpenComplaints.Open)
	assert.EqualValues(t, 2, out.OpenComplaints.ByPriority["urgent"])
	assert.EqualValues(t, 0, out.OpenComplaints.ByPriority["high"])

	_, err = svc.Dashboard(ctx, helperAuth.TenantActor(budi.TenantProfileUserID))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
