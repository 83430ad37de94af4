package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

// Kolom ekspor CSV, urutannya dipakai klien lama.
var ExportHeader = []string{
	"ID", "Receipt No", "Tenant Name", "Tenant Email", "Room Number", "Period",
	"Amount (Rp)", "Due Date", "Payment Date", "Status", "Payment Method",
	"Payment Reference", "Bank Name", "Notes", "Created At",
}

var statusLabel = map[model.PaymentStatus]string{
	model.PaymentStatusPending:   "Menunggu",
	model.PaymentStatusPaid:      "Lunas",
	model.PaymentStatusCancelled: "Dibatalkan",
}

var methodLabel = map[model.PaymentMethod]string{
	model.PaymentMethodCash:     "Tunai",
	model.PaymentMethodTransfer: "Transfer Bank",
	model.PaymentMethodOther:    "Lainnya",
}

// groupThousands: "1500000" → "1<sep>500<sep>000".
func groupThousands(digits, sep string) string {
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatAmount: 1500000 → "1,500,000.00".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	return groupThousands(intPart, ",") + "." + frac
}

// FormatRupiah: 1500000 → "Rp 1.500.000".
func FormatRupiah(d decimal.Decimal) string {
	return "Rp " + groupThousands(d.Round(0).String(), ".")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Receipt: hanya untuk pembayaran lunas.
func (s *PaymentService) Receipt(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.ReceiptResponse, error) {
	m, err := FindPayment(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, m); err != nil {
		return nil, err
	}
	if m.PaymentStatus != model.PaymentStatusPaid || m.PaymentPaymentDate == nil {
		return nil, apperror.PreconditionFailed("Kuitansi hanya tersedia untuk pembayaran yang sudah lunas")
	}

	r := &dto.ReceiptResponse{
		ReceiptNo:         m.PaymentCode,
		IssuedAt:          s.Now(),
		RoomNumber:        dto.RoomNumber(m),
		PeriodLabel:       dbtime.PeriodLabel(m.PaymentPeriodMonth, m.PaymentPeriodYear),
		Amount:            m.PaymentAmount,
		AmountText:        FormatRupiah(m.PaymentAmount),
		DueDate:           dbtime.FormatDate(m.PaymentDueDate),
		PaymentDate:       dbtime.FormatDate(*m.PaymentPaymentDate),
		Method:            m.PaymentMethod,
		Reference:         m.PaymentReference,
		BankName:          m.PaymentBankName,
		BankAccountName:   m.PaymentBankAccountName,
		BankAccountNumber: m.PaymentBankAccountNumber,
		Notes:             m.PaymentNotes,
	}
	if m.Tenant != nil {
		r.TenantName = m.Tenant.Name()
		if m.Tenant.User != nil {
			r.TenantEmail = m.Tenant.User.Email
			r.TenantPhone = m.Tenant.User.Phone
		}
	}
	return r, nil
}

// ExportCSV menulis semua pembayaran yang lolos filter (tanpa paging) ke w.
func (s *PaymentService) ExportCSV(ctx context.Context, actor helperAuth.Actor, q dto.ListPaymentsQuery, w io.Writer) (int, error) {
	if !actor.IsPrivileged() {
		return 0, apperror.Forbidden(constants.RoleErrorAdmin("ekspor pembayaran"))
	}
	tx, err := s.filtered(s.DB.WithContext(ctx), actor, q)
	if err != nil {
		return 0, err
	}
	var rows []model.PaymentModel
	if err := preloadAll(tx).
		Order("payments.payment_period_year DESC, payments.payment_period_month DESC, payments.payment_due_date DESC").
		Find(&rows).Error; err != nil {
		return 0, apperror.Internal("Gagal mengambil pembayaran", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, apperror.Internal("Gagal menulis CSV", err)
	}
	for i := range rows {
		m := &rows[i]
		name, email := "", ""
		if m.Tenant != nil {
			name = m.Tenant.Name()
			if m.Tenant.User != nil {
				email = m.Tenant.User.Email
			}
		}
		if name == "" {
			name = email
		}
		room := dto.RoomNumber(m)
		if room == "" {
			room = "N/A"
		}
		method := ""
		if m.PaymentMethod != nil {
			method = methodLabel[*m.PaymentMethod]
		}
		record := []string{
			m.PaymentID.String(),
			m.PaymentCode,
			name,
			email,
			room,
			dbtime.PeriodLabel(m.PaymentPeriodMonth, m.PaymentPeriodYear),
			FormatAmount(m.PaymentAmount),
			dbtime.FormatDate(m.PaymentDueDate),
			deref(dbtime.FormatDatePtr(m.PaymentPaymentDate)),
			statusLabel[m.PaymentStatus],
			method,
			deref(m.PaymentReference),
			m.PaymentBankName,
			deref(m.PaymentNotes),
			m.PaymentCreatedAt.In(dbtime.Location()).Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return 0, apperror.Internal("Gagal menulis CSV", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, apperror.Internal("Gagal menulis CSV", err)
	}
	return len(rows), nil
}
