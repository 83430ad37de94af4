package gateway

import (
	"context"
	"testing"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/features/payments/payments/service"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/storage"
	"kosan_backend/internals/testutil"
)

type fakeSnap struct {
	last *snap.Request
	fail bool
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.last = req
	if f.fail {
		return nil, &midtrans.Error{Message: "sandbox down", StatusCode: 500}
	}
	return &snap.Response{Token: "tok-123", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok-123"}, nil
}

const serverKey = "SB-Mid-server-test"

var now = time.Date(2025, time.June, 10, 2, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Gateway, *fakeSnap, *dto.PaymentResponse, helperAuth.Actor) {
	db := testutil.NewTestDB(t)
	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	tenant := testutil.SeedTenant(t, db, "budi")
	room := testutil.SeedRoom(t, db, "A102", 1_500_000)
	testutil.SeedAssignment(t, db, tenant, room, testutil.Date(2025, time.January, 1))

	svc := service.NewPaymentService(db, zap.NewNop(), configs.Billing{DueDay: 5}, storage.NewMemoryStore())
	svc.Now = testutil.FixedClock(now)
	p, err := svc.CreatePayment(context.Background(), helperAuth.AdminActor(admin.ID), dto.CreatePaymentRequest{
		TenantID: tenant.TenantProfileID, PeriodMonth: 6, PeriodYear: 2025,
	})
	require.NoError(t, err)

	fs := &fakeSnap{}
	gw := &Gateway{Snap: fs, ServerKey: serverKey, Payments: svc, Log: zap.NewNop(), Now: testutil.FixedClock(now)}
	return gw, fs, p, helperAuth.TenantActor(tenant.TenantProfileUserID)
}

func signed(n Notification) Notification {
	n.SignatureKey = Signature(n, serverKey)
	return n
}

func TestCreateChargeStoresOrderID(t *testing.T) {
	gw, fs, p, tenant := setup(t)

	out, err := gw.CreateCharge(context.Background(), tenant, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", out.Token)
	assert.Equal(t, "PAY-001-1749520800", out.OrderID)
	assert.EqualValues(t, 1_500_000, fs.last.TransactionDetails.GrossAmt)
	assert.Equal(t, "budi", fs.last.CustomerDetail.FName)

	found, err := gw.Payments.FindByGatewayOrder(context.Background(), out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, p.PaymentID, found.PaymentID)

	fs.fail = true
	_, err = gw.CreateCharge(context.Background(), tenant, p.PaymentID)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestNotificationSettlementMarksPaidOnce(t *testing.T) {
	gw, _, p, tenant := setup(t)
	ctx := context.Background()
	charge, err := gw.CreateCharge(ctx, tenant, p.PaymentID)
	require.NoError(t, err)

	n := signed(Notification{
		OrderID:           charge.OrderID,
		StatusCode:        "200",
		GrossAmount:       "1500000.00",
		TransactionStatus: "settlement",
		TransactionID:     "trx-9",
	})
	status, err := gw.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "paid", status)

	got, err := gw.Payments.GetPayment(ctx, tenant, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.Status)
	assert.Equal(t, model.PaymentMethodTransfer, *got.Method)
	assert.Equal(t, "trx-9", *got.Reference)
	assert.Nil(t, got.PaidBy)

	// retry dari Midtrans tetap sukses
	status, err = gw.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, "paid", status)

	_, err = gw.CreateCharge(ctx, tenant, p.PaymentID)
	assert.ErrorIs(t, err, apperror.ErrPreconditionFailed)
}

func TestNotificationNonSettlementKeepsPending(t *testing.T) {
	gw, _, p, tenant := setup(t)
	ctx := context.Background()
	charge, err := gw.CreateCharge(ctx, tenant, p.PaymentID)
	require.NoError(t, err)

	for _, st := range []string{"expire", "cancel", "deny"} {
		status, err := gw.HandleNotification(ctx, signed(Notification{OrderID: charge.OrderID, StatusCode: "202", GrossAmount: "1500000.00", TransactionStatus: st}))
		require.NoError(t, err)
		assert.Equal(t, "pending", status)
	}
	got, err := gw.Payments.GetPayment(ctx, tenant, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.Status)

	status, err := gw.HandleNotification(ctx, signed(Notification{OrderID: "PAY-999-1", StatusCode: "200", GrossAmount: "1", TransactionStatus: "settlement"}))
	require.NoError(t, err)
	assert.Equal(t, "ignored", status)

	forged := Notification{OrderID: charge.OrderID, StatusCode: "200", GrossAmount: "1500000.00", TransactionStatus: "settlement", SignatureKey: "abc"}
	_, err = gw.HandleNotification(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNotificationAmountMismatchKeepsPending(t *testing.T) {
	gw, _, p, tenant := setup(t)
	ctx := context.Background()
	charge, err := gw.CreateCharge(ctx, tenant, p.PaymentID)
	require.NoError(t, err)

	// admin menaikkan nominal setelah charge dibuat
	amount := decimal.NewFromInt(1_600_000)
	_, err = gw.Payments.UpdatePayment(ctx, helperAuth.SystemActor(), p.PaymentID, dto.UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)

	n := signed(Notification{OrderID: charge.OrderID, StatusCode: "200", GrossAmount: "1500000.00", TransactionStatus: "settlement"})
	status, err := gw.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, StatusAmountMismatch, status)

	got, err := gw.Payments.GetPayment(ctx, tenant, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.Status)

	// gross_amount yang tidak bisa dibaca juga ditolak
	status, err = gw.HandleNotification(ctx, signed(Notification{OrderID: charge.OrderID, StatusCode: "200", GrossAmount: "abc", TransactionStatus: "settlement"}))
	require.NoError(t, err)
	assert.Equal(t, StatusAmountMismatch, status)

	status, err = gw.HandleNotification(ctx, signed(Notification{OrderID: charge.OrderID, StatusCode: "200", GrossAmount: "1600000.00", TransactionStatus: "settlement"}))
	require.NoError(t, err)
	assert.Equal(t, "paid", status)
}
