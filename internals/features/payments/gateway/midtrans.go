// Package gateway menghubungkan tagihan pending dengan Midtrans Snap.
// Notifikasi settlement diteruskan ke PaymentService.MarkPaid sebagai actor sistem.
package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/features/payments/payments/service"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

// SnapCreator dipenuhi *snap.Client; test memakai tiruan.
type SnapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type Gateway struct {
	Snap      SnapCreator
	ServerKey string
	Payments  *service.PaymentService
	Log       *zap.Logger
	Now       func() time.Time
}

// New: useProduction=false memakai Sandbox.
func New(serverKey string, useProduction bool, payments *service.PaymentService, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	c := &snap.Client{}
	c.New(serverKey, env)
	return &Gateway{Snap: c, ServerKey: serverKey, Payments: payments, Log: log, Now: time.Now}
}

type ChargeResponse struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url"`
}

// CreateCharge membuat transaksi Snap untuk tagihan pending milik actor (atau admin).
// Order id = kode pembayaran + suffix unix, disimpan di payment_gateway_order_id.
func (g *Gateway) CreateCharge(ctx context.Context, actor helperAuth.Actor, paymentID uuid.UUID) (*ChargeResponse, error) {
	p, err := g.Payments.GetPayment(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPending {
		return nil, apperror.PreconditionFailed("Hanya tagihan pending yang bisa dibayar online")
	}

	orderID := fmt.Sprintf("%s-%d", p.PaymentCode, g.Now().Unix())
	gross := p.Amount.Round(0).IntPart()
	name := dbtime.PeriodLabel(p.PeriodMonth, p.PeriodYear)
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: p.TenantName,
			Email: p.TenantEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       p.PaymentCode,
			Price:    gross,
			Qty:      1,
			Name:     truncate("Sewa kamar "+p.RoomNumber+" "+name, 50),
			Category: "Sewa",
		}},
	}

	resp, mErr := g.Snap.CreateTransaction(req)
	if mErr != nil {
		g.Log.Error("midtrans create transaction failed", zap.String("order_id", orderID), zap.String("error", mErr.Message))
		return nil, apperror.Internal("Gagal membuat transaksi pembayaran", errors.New(mErr.Message))
	}
	if err := g.Payments.SetGatewayOrder(ctx, paymentID, orderID); err != nil {
		return nil, err
	}
	g.Log.Info("midtrans charge created", zap.String("payment_id", paymentID.String()), zap.String("order_id", orderID))
	return &ChargeResponse{PaymentID: paymentID, OrderID: orderID, Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// Notification adalah payload HTTP notification Midtrans (field lain diabaikan).
type Notification struct {
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

var ErrInvalidSignature = errors.New("invalid signature")

// StatusAmountMismatch: settlement dengan nominal yang berbeda dari tagihan; tagihan tetap pending.
const StatusAmountMismatch = "amount_mismatch"

// grossMatches membandingkan gross_amount Midtrans dengan nominal yang dikirim saat charge (dibulatkan).
func grossMatches(gross string, amount decimal.Decimal) bool {
	g, err := decimal.NewFromString(strings.TrimSpace(gross))
	if err != nil {
		return false
	}
	return g.Equal(amount.Round(0))
}

// Signature: SHA512(order_id + status_code + gross_amount + server_key).
func Signature(n Notification, serverKey string) string {
	h := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// HandleNotification: capture(accept)/settlement → MarkPaid; expire/cancel/deny hanya dicatat,
// tagihan tetap pending. Mengembalikan status hasil pemrosesan.
func (g *Gateway) HandleNotification(ctx context.Context, n Notification) (string, error) {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || want != Signature(n, g.ServerKey) {
		return "", ErrInvalidSignature
	}
	log := g.Log.With(zap.String("order_id", n.OrderID), zap.String("transaction_status", n.TransactionStatus))

	p, err := g.Payments.FindByGatewayOrder(ctx, n.OrderID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			log.Warn("midtrans notification for unknown order")
			return "ignored", nil
		}
		return "", err
	}

	switch strings.ToLower(n.TransactionStatus) {
	case "capture", "settlement":
		if strings.EqualFold(n.TransactionStatus, "capture") && n.FraudStatus != "" && !strings.EqualFold(n.FraudStatus, "accept") {
			log.Warn("midtrans capture not accepted", zap.String("fraud_status", n.FraudStatus))
			return "pending", nil
		}
		// nominal bisa diubah admin setelah charge dibuat
		if !grossMatches(n.GrossAmount, p.PaymentAmount) {
			log.Warn("midtrans gross amount does not match payment",
				zap.String("gross_amount", n.GrossAmount),
				zap.String("payment_amount", p.PaymentAmount.StringFixed(2)))
			return StatusAmountMismatch, nil
		}
		paymentID := p.PaymentID
		method := model.PaymentMethodTransfer
		req := dto.MarkPaidRequest{Method: &method}
		if n.TransactionID != "" {
			ref := n.TransactionID
			req.Reference = &ref
		}
		if _, err := g.Payments.MarkPaid(ctx, helperAuth.SystemActor(), paymentID, req); err != nil {
			if errors.Is(err, apperror.ErrAlreadyPaid) {
				log.Info("midtrans notification for already paid payment")
				return "paid", nil
			}
			log.Error("mark paid from gateway failed", zap.Error(err))
			return "", err
		}
		log.Info("payment settled via midtrans", zap.String("payment_id", paymentID.String()))
		return "paid", nil

	case "expire", "cancel", "deny", "failure":
		log.Info("midtrans transaction not completed, payment stays pending")
		return "pending", nil

	default:
		log.Info("midtrans status ignored")
		return "ignored", nil
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
