package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/helpers/dbtime"
)

/* ===================== REQUEST ===================== */

type CreatePaymentRequest struct {
	TenantID     uuid.UUID  `json:"tenant_id" validate:"required"`
	AssignmentID *uuid.UUID `json:"assignment_id"`

	PeriodMonth int `json:"payment_period_month" validate:"required,min=1,max=12"`
	PeriodYear  int `json:"payment_period_year" validate:"required,min=2000,max=2100"`

	Amount  *decimal.Decimal `json:"amount"`
	DueDate *string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`

	BankName          *string `json:"bank_name" validate:"omitempty,max=100"`
	BankAccountName   *string `json:"bank_account_name" validate:"omitempty,max=100"`
	BankAccountNumber *string `json:"bank_account_number" validate:"omitempty,max=50"`
	Notes             *string `json:"notes"`
}

// GeneratePeriodRequest: DueDay nil → PAYMENT_DUE_DAY.
type GeneratePeriodRequest struct {
	Month  int  `json:"month"`
	Year   int  `json:"year"`
	DueDay *int `json:"due_day"`
	DryRun bool `json:"dry_run"`
}

type MarkPaidRequest struct {
	PaymentDate *string              `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method      *model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash transfer other"`
	Reference   *string              `json:"payment_reference" validate:"omitempty,max=100"`
	Notes       *string              `json:"notes"`
}

type CancelPaymentRequest struct {
	Notes *string `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount    *decimal.Decimal     `json:"amount"`
	DueDate   *string              `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Method    *model.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=cash transfer other"`
	Reference *string              `json:"payment_reference" validate:"omitempty,max=100"`

	BankName          *string `json:"bank_name" validate:"omitempty,max=100"`
	BankAccountName   *string `json:"bank_account_name" validate:"omitempty,max=100"`
	BankAccountNumber *string `json:"bank_account_number" validate:"omitempty,max=50"`
	Notes             *string `json:"notes"`
}

// ListPaymentsQuery: status boleh "overdue" (pending + lewat jatuh tempo).
type ListPaymentsQuery struct {
	Status     string     `query:"status"`
	TenantID   *uuid.UUID `query:"tenant_id"`
	Month      *int       `query:"month"`
	Year       *int       `query:"year"`
	DueFrom    string     `query:"due_date_from"`
	DueTo      string     `query:"due_date_to"`
	TenantName string     `query:"tenant_name"`
	Reference  string     `query:"payment_reference"`
}

/* ===================== RESPONSE ===================== */

type PaymentResponse struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	PaymentCode string    `json:"payment_code,omitempty"`

	TenantID     uuid.UUID  `json:"tenant_id"`
	TenantName   string     `json:"tenant_name,omitempty"`
	TenantEmail  string     `json:"tenant_email,omitempty"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	RoomNumber   string     `json:"room_number,omitempty"`

	PeriodMonth int    `json:"payment_period_month"`
	PeriodYear  int    `json:"payment_period_year"`
	PeriodLabel string `json:"period_label"`

	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	PaymentDate *string         `json:"payment_date,omitempty"`

	Status      model.PaymentStatus  `json:"status"`
	IsOverdue   bool                 `json:"is_overdue"`
	DaysOverdue int                  `json:"days_overdue"`
	Method      *model.PaymentMethod `json:"payment_method,omitempty"`
	Reference   *string              `json:"payment_reference,omitempty"`

	BankName          string  `json:"bank_name"`
	BankAccountName   string  `json:"bank_account_name"`
	BankAccountNumber *string `json:"bank_account_number,omitempty"`

	ProofURL *string    `json:"proof_url,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
	PaidBy   *uuid.UUID `json:"paid_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func FromModel(m *model.PaymentModel, today time.Time) PaymentResponse {
	r := PaymentResponse{
		PaymentID:         m.PaymentID,
		PaymentCode:       m.PaymentCode,
		TenantID:          m.PaymentTenantID,
		AssignmentID:      m.PaymentAssignmentID,
		PeriodMonth:       m.PaymentPeriodMonth,
		PeriodYear:        m.PaymentPeriodYear,
		PeriodLabel:       dbtime.PeriodLabel(m.PaymentPeriodMonth, m.PaymentPeriodYear),
		Amount:            m.PaymentAmount,
		DueDate:           dbtime.FormatDate(m.PaymentDueDate),
		PaymentDate:       dbtime.FormatDatePtr(m.PaymentPaymentDate),
		Status:            m.PaymentStatus,
		IsOverdue:         m.IsOverdue(today),
		DaysOverdue:       m.DaysOverdue(today),
		Method:            m.PaymentMethod,
		Reference:         m.PaymentReference,
		BankName:          m.PaymentBankName,
		BankAccountName:   m.PaymentBankAccountName,
		BankAccountNumber: m.PaymentBankAccountNumber,
		ProofURL:          m.PaymentProofURL,
		Notes:             m.PaymentNotes,
		PaidAt:            m.PaymentPaidAt,
		PaidBy:            m.PaymentPaidBy,
		CreatedAt:         m.PaymentCreatedAt,
	}
	if m.Tenant != nil {
		r.TenantName = m.Tenant.Name()
		if m.Tenant.User != nil {
			r.TenantEmail = m.Tenant.User.Email
		}
	}
	r.RoomNumber = RoomNumber(m)
	return r
}

// RoomNumber: kamar dari penempatan yang tertaut, kosong kalau tidak ada.
func RoomNumber(m *model.PaymentModel) string {
	if m.Assignment != nil && m.Assignment.Room != nil {
		return m.Assignment.Room.RoomNumber
	}
	return ""
}

func FromModelList(rows []model.PaymentModel, today time.Time) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], today))
	}
	return out
}

type SkippedTenant struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Reason     string    `json:"reason"`
}

type GeneratePeriodResult struct {
	Month        int               `json:"month"`
	Year         int               `json:"year"`
	PeriodLabel  string            `json:"period_label"`
	DryRun       bool              `json:"dry_run"`
	CreatedCount int               `json:"created_count"`
	SkippedCount int               `json:"skipped_count"`
	Created      []PaymentResponse `json:"created"`
	Skipped      []SkippedTenant   `json:"skipped"`
}

type MonthlyRevenue struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	MonthName string          `json:"month_name"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type PaymentStatistics struct {
	TotalPayments  int64 `json:"total_payments"`
	PaidCount      int64 `json:"paid_count"`
	PendingCount   int64 `json:"pending_count"`
	OverdueCount   int64 `json:"overdue_count"`
	CancelledCount int64 `json:"cancelled_count"`

	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`

	MonthlyRevenue []MonthlyRevenue `json:"monthly_revenue"`

	ThisMonthPaid    int64           `json:"this_month_paid"`
	ThisMonthPending int64           `json:"this_month_pending"`
	ThisMonthRevenue decimal.Decimal `json:"this_month_revenue"`
}

// ReceiptResponse: data kuitansi untuk pembayaran lunas.
type ReceiptResponse struct {
	ReceiptNo string    `json:"receipt_no"`
	IssuedAt  time.Time `json:"issued_at"`

	TenantName  string  `json:"tenant_name"`
	TenantEmail string  `json:"tenant_email"`
	TenantPhone *string `json:"tenant_phone,omitempty"`
	RoomNumber  string  `json:"room_number,omitempty"`

	PeriodLabel string          `json:"period_label"`
	Amount      decimal.Decimal `json:"amount"`
	AmountText  string          `json:"amount_text"`
	DueDate     string          `json:"due_date"`
	PaymentDate string          `json:"payment_date"`

	Method            *model.PaymentMethod `json:"payment_method,omitempty"`
	Reference         *string              `json:"payment_reference,omitempty"`
	BankName          string               `json:"bank_name"`
	BankAccountName   string               `json:"bank_account_name"`
	BankAccountNumber *string              `json:"bank_account_number,omitempty"`
	Notes             *string              `json:"notes,omitempty"`
}
