package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/storage"
	"kosan_backend/internals/testutil"
)

// 10 Juni 2025, 09:00 WIB.
var now = time.Date(2025, time.June, 10, 2, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *PaymentService
	db    *gorm.DB
	admin helperAuth.Actor
	files *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	files := storage.NewMemoryStore()
	svc := NewPaymentService(db, zap.NewNop(), configs.Billing{
		DueDay:          5,
		BankName:        "Bank BCA",
		BankAccountName: "Rahman Hadi",
	}, files)
	svc.Now = testutil.FixedClock(now)
	return &fixture{svc: svc, db: db, admin: helperAuth.AdminActor(admin.ID), files: files}
}

// housed: penyewa aktif yang menempati kamar baru dengan harga price.
func (f *fixture) housed(t *testing.T, name, room string, price int64) *profileModel.TenantProfileModel {
	tenant := testutil.SeedTenant(t, f.db, name)
	r := testutil.SeedRoom(t, f.db, room, price)
	testutil.SeedAssignment(t, f.db, tenant, r, testutil.Date(2025, time.January, 1))
	return tenant
}

func (f *fixture) bill(t *testing.T, tenant *profileModel.TenantProfileModel, month, year int) *dto.PaymentResponse {
	out, err := f.svc.CreatePayment(context.Background(), f.admin, dto.CreatePaymentRequest{
		TenantID: tenant.TenantProfileID, PeriodMonth: month, PeriodYear: year,
	})
	require.NoError(t, err)
	return out
}

func strPtr(s string) *string { return &s }

func TestCreatePaymentDefaultsAndPeriodUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)

	out := f.bill(t, budi, 6, 2025)
	assert.Equal(t, "PAY-001", out.PaymentCode)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(1_500_000)))
	assert.Equal(t, "2025-06-05", out.DueDate)
	assert.Equal(t, model.PaymentStatusPending, out.Status)
	assert.True(t, out.IsOverdue)
	assert.Equal(t, 5, out.DaysOverdue)
	assert.Equal(t, "A102", out.RoomNumber)
	assert.Equal(t, "Juni 2025", out.PeriodLabel)
	assert.Equal(t, "Bank BCA", out.BankName)

	_, err := f.svc.CreatePayment(ctx, f.admin, dto.CreatePaymentRequest{TenantID: budi.TenantProfileID, PeriodMonth: 6, PeriodYear: 2025})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, apperror.CodeDuplicatePeriod, err.(*apperror.Error).Code)

	lone := testutil.SeedTenant(t, f.db, "lone")
	_, err = f.svc.CreatePayment(ctx, f.admin, dto.CreatePaymentRequest{TenantID: lone.TenantProfileID, PeriodMonth: 6, PeriodYear: 2025})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.CreatePayment(ctx, f.admin, dto.CreatePaymentRequest{TenantID: budi.TenantProfileID, PeriodMonth: 13, PeriodYear: 2025})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.CreatePayment(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), dto.CreatePaymentRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestGeneratePeriodIsIdempotentAndClampsDueDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	f.housed(t, "sari", "A103", 1_750_000)
	f.bill(t, budi, 2, 2025)

	dueDay := 31
	plan, err := f.svc.GeneratePeriod(ctx, f.admin, dto.GeneratePeriodRequest{Month: 2, Year: 2025, DueDay: &dueDay, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.CreatedCount)
	assert.Equal(t, 1, plan.SkippedCount)
	assert.Equal(t, "2025-02-28", plan.Created[0].DueDate)
	assert.Equal(t, "sari", plan.Created[0].TenantName)

	var n int64
	f.db.Model(&model.PaymentModel{}).Count(&n)
	assert.EqualValues(t, 1, n, "dry run tidak boleh menulis")

	res, err := f.svc.GeneratePeriod(ctx, f.admin, dto.GeneratePeriodRequest{Month: 2, Year: 2025, DueDay: &dueDay})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CreatedCount)
	assert.Equal(t, budi.TenantProfileID, res.Skipped[0].TenantID)
	assert.True(t, res.Created[0].Amount.Equal(decimal.NewFromInt(1_750_000)))
	assert.NotEmpty(t, res.Created[0].PaymentCode)

	again, err := f.svc.GeneratePeriod(ctx, f.admin, dto.GeneratePeriodRequest{Month: 2, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, 0, again.CreatedCount)
	assert.Equal(t, 2, again.SkippedCount)

	f.db.Model(&model.PaymentModel{}).Count(&n)
	assert.EqualValues(t, 2, n)

	bad := 32
	_, err = f.svc.GeneratePeriod(ctx, f.admin, dto.GeneratePeriodRequest{Month: 2, Year: 2025, DueDay: &bad})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	_, err = f.svc.GeneratePeriod(ctx, f.admin, dto.GeneratePeriodRequest{Month: 0, Year: 2025})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestMarkPaidRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	p := f.bill(t, budi, 6, 2025)

	_, err := f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{PaymentDate: strPtr("2025-06-11")})
	assert.ErrorIs(t, err, apperror.ErrInvalidDate)
	_, err = f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{PaymentDate: strPtr("1999-12-31")})
	assert.ErrorIs(t, err, apperror.ErrInvalidDate)

	cash := model.PaymentMethodCash
	out, err := f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{Method: &cash, Reference: strPtr(" KW-77 ")})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, out.Status)
	require.NotNil(t, out.PaymentDate)
	assert.Equal(t, "2025-06-10", *out.PaymentDate)
	assert.Equal(t, "KW-77", *out.Reference)
	assert.Equal(t, f.admin.UserID, *out.PaidBy)
	assert.False(t, out.IsOverdue)

	_, err = f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)

	q := f.bill(t, budi, 7, 2025)
	_, err = f.svc.Cancel(ctx, f.admin, q.PaymentID, dto.CancelPaymentRequest{})
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, f.admin, q.PaymentID, dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.NotErrorIs(t, err, apperror.ErrAlreadyPaid)
}

func TestConcurrentMarkPaidOnlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	budi := f.housed(t, "budi", "A102", 1_500_000)
	p := f.bill(t, budi, 6, 2025)

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.MarkPaid(context.Background(), f.admin, p.PaymentID, dto.MarkPaidRequest{})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestPaidPaymentIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	p := f.bill(t, budi, 6, 2025)
	_, err := f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{})
	require.NoError(t, err)

	err = f.svc.DeletePayment(ctx, f.admin, p.PaymentID)
	assert.ErrorIs(t, err, apperror.ErrPreconditionFailed)
	_, err = f.svc.Cancel(ctx, f.admin, p.PaymentID, dto.CancelPaymentRequest{})
	assert.ErrorIs(t, err, apperror.ErrAlreadyPaid)

	amount := decimal.NewFromInt(10)
	_, err = f.svc.UpdatePayment(ctx, f.admin, p.PaymentID, dto.UpdatePaymentRequest{Amount: &amount})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	out, err := f.svc.UpdatePayment(ctx, f.admin, p.PaymentID, dto.UpdatePaymentRequest{Notes: strPtr("dibayar di kantor")})
	require.NoError(t, err)
	assert.Equal(t, "dibayar di kantor", *out.Notes)

	q := f.bill(t, budi, 7, 2025)
	_, err = f.svc.Cancel(ctx, f.admin, q.PaymentID, dto.CancelPaymentRequest{})
	require.NoError(t, err)
	again, err := f.svc.Cancel(ctx, f.admin, q.PaymentID, dto.CancelPaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCancelled, again.Status)
	require.NoError(t, f.svc.DeletePayment(ctx, f.admin, q.PaymentID))
}

func TestListFiltersOverdueAndScopesTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	sari := f.housed(t, "sari", "A103", 1_500_000)
	f.bill(t, budi, 6, 2025) // jatuh tempo 5 Juni → overdue
	f.bill(t, budi, 7, 2025)
	f.bill(t, sari, 6, 2025)

	p := helper.Params{Page: 1, PerPage: 50, SortBy: "due_date", SortOrder: "asc"}
	rows, total, err := f.svc.ListPayments(ctx, f.admin, dto.ListPaymentsQuery{Status: "overdue"}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range rows {
		assert.True(t, r.IsOverdue)
	}

	rows, total, err = f.svc.ListPayments(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), dto.ListPaymentsQuery{TenantID: &sari.TenantProfileID}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "2025-06-05", rows[0].DueDate)

	_, total, err = f.svc.ListPayments(ctx, f.admin, dto.ListPaymentsQuery{TenantName: "SAR"}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = f.svc.ListPayments(ctx, f.admin, dto.ListPaymentsQuery{Status: "lunas"}, p)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestStatisticsTwelveMonthWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_000_000)

	for _, per := range []struct{ m, y int }{{6, 2024}, {7, 2024}, {6, 2025}} {
		p := f.bill(t, budi, per.m, per.y)
		_, err := f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{})
		require.NoError(t, err)
	}
	f.bill(t, budi, 7, 2025) // pending, belum jatuh tempo
	f.bill(t, budi, 5, 2025) // pending, overdue

	st, err := f.svc.Statistics(ctx, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 5, st.TotalPayments)
	assert.EqualValues(t, 3, st.PaidCount)
	assert.EqualValues(t, 1, st.PendingCount)
	assert.EqualValues(t, 1, st.OverdueCount)
	assert.True(t, st.PaidAmount.Equal(decimal.NewFromInt(3_000_000)))

	require.Len(t, st.MonthlyRevenue, 12)
	first, last := st.MonthlyRevenue[0], st.MonthlyRevenue[11]
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, 7, first.Month)
	assert.True(t, first.Revenue.Equal(decimal.NewFromInt(1_000_000)))
	assert.Equal(t, 2025, last.Year)
	assert.Equal(t, 6, last.Month)
	assert.Equal(t, "Juni", last.MonthName)
	assert.True(t, st.MonthlyRevenue[5].Revenue.IsZero())

	assert.EqualValues(t, 1, st.ThisMonthPaid)
	assert.True(t, st.ThisMonthRevenue.Equal(decimal.NewFromInt(1_000_000)))

	_, err = f.svc.Statistics(ctx, helperAuth.TenantActor(uuid.New()))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReceiptAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	p := f.bill(t, budi, 6, 2025)
	f.bill(t, budi, 7, 2025)

	_, err := f.svc.Receipt(ctx, f.admin, p.PaymentID)
	assert.ErrorIs(t, err, apperror.ErrPreconditionFailed)

	transfer := model.PaymentMethodTransfer
	_, err = f.svc.MarkPaid(ctx, f.admin, p.PaymentID, dto.MarkPaidRequest{Method: &transfer})
	require.NoError(t, err)
	rc, err := f.svc.Receipt(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "PAY-001", rc.ReceiptNo)
	assert.Equal(t, "Juni 2025", rc.PeriodLabel)
	assert.Equal(t, "Rp 1.500.000", rc.AmountText)
	assert.Equal(t, "A102", rc.RoomNumber)

	var buf bytes.Buffer
	n, err := f.svc.ExportCSV(ctx, f.admin, dto.ListPaymentsQuery{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, "Juli 2025", records[1][5])
	june := records[2]
	assert.Equal(t, "PAY-001", june[1])
	assert.Equal(t, "1,500,000.00", june[6])
	assert.Equal(t, "Lunas", june[9])
	assert.Equal(t, "Transfer Bank", june[10])

	_, err = f.svc.ExportCSV(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), dto.ListPaymentsQuery{}, &buf)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUploadProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	budi := f.housed(t, "budi", "A102", 1_500_000)
	sari := f.housed(t, "sari", "A103", 1_500_000)
	p := f.bill(t, budi, 6, 2025)

	pdf := storage.Object{Filename: "bukti.pdf", Data: []byte("%PDF-1.4\n%bukti transfer\n")}

	_, err := f.svc.UploadProof(ctx, helperAuth.TenantActor(sari.TenantProfileUserID), p.PaymentID, pdf)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.UploadProof(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), p.PaymentID,
		storage.Object{Filename: "virus.exe", Data: []byte("MZ")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	out, err := f.svc.UploadProof(ctx, helperAuth.TenantActor(budi.TenantProfileUserID), p.PaymentID, pdf)
	require.NoError(t, err)
	require.NotNil(t, out.ProofURL)
	assert.Contains(t, f.files.Objects, *out.ProofURL)

	again, err := f.svc.UploadProof(ctx, f.admin, p.PaymentID, pdf)
	require.NoError(t, err)
	assert.NotContains(t, f.files.Objects, *out.ProofURL)
	assert.Len(t, f.files.Objects, 1)
	assert.Contains(t, f.files.Objects, *again.ProofURL)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,500,000.00", FormatAmount(decimal.NewFromInt(1_500_000)))
	assert.Equal(t, "950.50", FormatAmount(decimal.RequireFromString("950.5")))
	assert.Equal(t, "Rp 12.345.678", FormatRupiah(decimal.NewFromInt(12_345_678)))
	assert.Equal(t, "Rp 500", FormatRupiah(decimal.NewFromInt(500)))
}

// Tagihan periode yang sama masuk di antara pengecekan dan insert GeneratePeriod.
func TestGeneratePeriodSkipsRowInsertedMidway(t *testing.T) {
	f := newFixture(t)
	budi := f.housed(t, "budi", "A102", 1_500_000)
	f.housed(t, "sari", "A103", 1_750_000)

	var (
		fired    bool
		rivalErr error
	)
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:rival_payment", func(tx *gorm.DB) {
		p, ok := tx.Statement.Dest.(*model.PaymentModel)
		if fired || !ok || p.PaymentTenantID != budi.TenantProfileID {
			return
		}
		fired = true
		rivalErr = tx.Session(&gorm.Session{NewDB: true}).Create(&model.PaymentModel{
			PaymentCode:            "PAY-RIVAL",
			PaymentTenantID:        p.PaymentTenantID,
			PaymentPeriodMonth:     p.PaymentPeriodMonth,
			PaymentPeriodYear:      p.PaymentPeriodYear,
			PaymentAmount:          p.PaymentAmount,
			PaymentDueDate:         p.PaymentDueDate,
			PaymentStatus:          model.PaymentStatusPending,
			PaymentBankName:        "Bank BCA",
			PaymentBankAccountName: "Rahman Hadi",
		}).Error
	}))

	res, err := f.svc.GeneratePeriod(context.Background(), f.admin, dto.GeneratePeriodRequest{Month: 7, Year: 2025})
	require.NoError(t, err)
	require.True(t, fired)
	require.NoError(t, rivalErr)
	assert.Equal(t, 1, res.CreatedCount)
	require.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, budi.TenantProfileID, res.Skipped[0].TenantID)
	assert.Equal(t, reasonRace, res.Skipped[0].Reason)

	var rows []model.PaymentModel
	require.NoError(t, f.db.Where("payment_period_month = ? AND payment_period_year = ?", 7, 2025).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		if r.PaymentTenantID == budi.TenantProfileID {
			assert.Equal(t, "PAY-RIVAL", r.PaymentCode)
		}
	}
}

func TestGeneratePeriodRacesManualCreate(t *testing.T) {
	f := newFixture(t)
	const n = 4
	tenants := make([]*profileModel.TenantProfileModel, 0, n)
	for i := 0; i < n; i++ {
		tenants = append(tenants, f.housed(t, "t", "B10"+string(rune('1'+i)), 1_000_000))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		manualOK  int
		generated *dto.GeneratePeriodResult
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err := f.svc.GeneratePeriod(context.Background(), f.admin, dto.GeneratePeriodRequest{Month: 8, Year: 2025})
		assert.NoError(t, err)
		mu.Lock()
		generated = res
		mu.Unlock()
	}()
	for _, tenant := range tenants {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.CreatePayment(context.Background(), f.admin, dto.CreatePaymentRequest{
				TenantID: id, PeriodMonth: 8, PeriodYear: 2025,
			})
			if err != nil {
				assert.ErrorIs(t, err, apperror.ErrConflict)
				return
			}
			mu.Lock()
			manualOK++
			mu.Unlock()
		}(tenant.TenantProfileID)
	}
	wg.Wait()

	require.NotNil(t, generated)
	assert.Equal(t, n, generated.CreatedCount+manualOK)
	assert.Equal(t, n-generated.CreatedCount, generated.SkippedCount)

	for _, tenant := range tenants {
		var c int64
		f.db.Model(&model.PaymentModel{}).
			Where("payment_tenant_id = ? AND payment_period_month = ? AND payment_period_year = ?", tenant.TenantProfileID, 8, 2025).
			Count(&c)
		assert.EqualValues(t, 1, c)
	}
}
