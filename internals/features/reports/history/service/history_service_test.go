package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	paymentModel "kosan_backend/internals/features/payments/payments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/testutil"
)

func seedPayment(t *testing.T, db *gorm.DB, p *profileModel.TenantProfileModel, month, year int, due time.Time, paidOn *time.Time) {
	t.Helper()
	m := &paymentModel.PaymentModel{
		PaymentCode:            "PAY-" + uuid.NewString()[:8],
		PaymentTenantID:        p.TenantProfileID,
		PaymentPeriodMonth:     month,
		PaymentPeriodYear:      year,
		PaymentAmount:          testutil.Rupiah(1_500_000),
		PaymentDueDate:         due,
		PaymentStatus:          paymentModel.PaymentStatusPending,
		PaymentBankName:        "Bank BCA",
		PaymentBankAccountName: "Kosan",
	}
	if paidOn != nil {
		m.PaymentStatus = paymentModel.PaymentStatusPaid
		m.PaymentPaymentDate = paidOn
	}
	require.NoError(t, db.Create(m).Error)
}

func seedComplaint(t *testing.T, db *gorm.DB, p *profileModel.TenantProfileModel, cat complaintModel.ComplaintCategory, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&complaintModel.ComplaintModel{
		ComplaintTenantID:    p.TenantProfileID,
		ComplaintTitle:       "Keluhan uji",
		ComplaintDescription: "Deskripsi keluhan uji",
		ComplaintCategory:    cat,
		ComplaintPriority:    complaintModel.PriorityMedium,
		ComplaintStatus:      complaintModel.StatusOpen,
		ComplaintCreatedAt:   at,
	}).Error)
}

func datep(y int, m time.Month, d int) *time.Time {
	t := testutil.Date(y, m, d)
	return &t
}

func TestTenantHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewHistoryService(db, zap.NewNop())
	svc.Now = testutil.FixedClock(time.Date(2025, time.June, 10, 2, 0, 0, 0, time.UTC))

	admin := helperAuth.AdminActor(testutil.SeedUser(t, db, "admin", constants.RoleAdmin).ID)
	budi := testutil.SeedTenant(t, db, "budi")
	sari := testutil.SeedTenant(t, db, "sari")

	seedPayment(t, db, budi, 1, 2024, testutil.Date(2024, time.January, 5), datep(2024, time.January, 5))
	seedPayment(t, db, budi, 4, 2025, testutil.Date(2025, time.April, 5), datep(2025, time.April, 3))
	seedPayment(t, db, budi, 5, 2025, testutil.Date(2025, time.May, 5), datep(2025, time.May, 8))
	seedPayment(t, db, budi, 6, 2025, testutil.Date(2025, time.June, 5), nil)

	// 31 Mei 20:00 UTC = 1 Juni WIB
	seedComplaint(t, db, budi, complaintModel.CategoryNoise, time.Date(2025, time.May, 31, 20, 0, 0, 0, time.UTC))
	seedComplaint(t, db, budi, complaintModel.CategoryMaintenance, time.Date(2025, time.June, 9, 3, 0, 0, 0, time.UTC))
	seedComplaint(t, db, budi, complaintModel.CategoryMaintenance, time.Date(2025, time.May, 10, 3, 0, 0, 0, time.UTC))
	seedComplaint(t, db, budi, complaintModel.CategoryOther, time.Date(2024, time.March, 1, 3, 0, 0, 0, time.UTC))

	out, err := svc.TenantHistory(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), nil)
	require.NoError(t, err)
	assert.Equal(t, "budi", out.UserName)
	assert.Equal(t, "2024-06-10", out.From)

	require.Len(t, out.PaymentHistory, 3)
	assert.Equal(t, "Juni 2025", out.PaymentHistory[0].PeriodLabel)
	assert.True(t, out.PaymentHistory[0].IsLate)
	assert.True(t, out.PaymentHistory[1].IsLate)
	assert.False(t, out.PaymentHistory[2].IsLate)
	assert.Equal(t, 3, out.PaymentSummary.Total)
	assert.Equal(t, 1, out.PaymentSummary.OnTime)
	assert.Equal(t, 1, out.PaymentSummary.Late)
	assert.Equal(t, 1, out.PaymentSummary.Unpaid)

	require.Len(t, out.ComplaintHistory, 2)
	assert.Equal(t, 6, out.ComplaintHistory[0].Month)
	assert.Equal(t, 2, out.ComplaintHistory[0].Count)
	assert.Equal(t, []string{"maintenance", "noise"}, out.ComplaintHistory[0].Categories)
	assert.Equal(t, 5, out.ComplaintHistory[1].Month)
	assert.Equal(t, 3, out.ComplaintSummary.Total)
	assert.Equal(t, 2, out.ComplaintSummary.ByCategory["maintenance"])

	// akses
	_, err = svc.TenantHistory(ctx, helperAuth.TenantActor(sari.TenantProfileUserID), &budi.TenantProfileUserID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := svc.TenantHistory(ctx, admin, &budi.TenantProfileUserID)
	require.NoError(t, err)
	assert.Len(t, got.PaymentHistory, 3)

	_, err = svc.TenantHistory(ctx, admin, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	missing := uuid.New()
	_, err = svc.TenantHistory(ctx, admin, &missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
