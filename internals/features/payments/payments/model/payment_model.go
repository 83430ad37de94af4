package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"

	// status virtual untuk filter (pending + lewat jatuh tempo), tidak disimpan
	PaymentStatusOverdue PaymentStatus = "overdue"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// PaymentModel: tagihan sewa per penyewa per periode (bulan, tahun).
type PaymentModel struct {
	PaymentID   uuid.UUID `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	PaymentCode string    `gorm:"column:payment_code;type:varchar(20);not null;uniqueIndex:uq_payments_code" json:"payment_code"`

	PaymentTenantID     uuid.UUID  `gorm:"column:payment_tenant_id;type:uuid;not null;uniqueIndex:uq_payments_tenant_period,priority:1" json:"payment_tenant_id"`
	PaymentAssignmentID *uuid.UUID `gorm:"column:payment_assignment_id;type:uuid;index" json:"payment_assignment_id,omitempty"`

	PaymentPeriodMonth int `gorm:"column:payment_period_month;not null;uniqueIndex:uq_payments_tenant_period,priority:2;check:chk_payments_month,payment_period_month BETWEEN 1 AND 12" json:"payment_period_month"`
	PaymentPeriodYear  int `gorm:"column:payment_period_year;not null;uniqueIndex:uq_payments_tenant_period,priority:3;check:chk_payments_year,payment_period_year BETWEEN 2000 AND 2100" json:"payment_period_year"`

	PaymentAmount      decimal.Decimal `gorm:"column:payment_amount;type:numeric(12,2);not null;check:chk_payments_amount,payment_amount > 0" json:"payment_amount"`
	PaymentDueDate     time.Time       `gorm:"column:payment_due_date;type:date;not null;index" json:"payment_due_date"`
	PaymentPaymentDate *time.Time      `gorm:"column:payment_payment_date;type:date" json:"payment_payment_date,omitempty"`

	PaymentStatus    PaymentStatus  `gorm:"column:payment_status;type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod    *PaymentMethod `gorm:"column:payment_method;type:varchar(20)" json:"payment_method,omitempty"`
	PaymentReference *string        `gorm:"column:payment_reference;type:varchar(100)" json:"payment_reference,omitempty"`

	PaymentBankName          string  `gorm:"column:payment_bank_name;type:varchar(100);not null" json:"payment_bank_name"`
	PaymentBankAccountName   string  `gorm:"column:payment_bank_account_name;type:varchar(100);not null" json:"payment_bank_account_name"`
	PaymentBankAccountNumber *string `gorm:"column:payment_bank_account_number;type:varchar(50)" json:"payment_bank_account_number,omitempty"`

	PaymentProofURL       *string `gorm:"column:payment_proof_url;type:text" json:"payment_proof_url,omitempty"`
	PaymentNotes          *string `gorm:"column:payment_notes;type:text" json:"payment_notes,omitempty"`
	PaymentGatewayOrderID *string `gorm:"column:payment_gateway_order_id;type:varchar(64);uniqueIndex:uq_payments_gateway_order" json:"payment_gateway_order_id,omitempty"`

	PaymentPaidAt *time.Time `gorm:"column:payment_paid_at" json:"payment_paid_at,omitempty"`
	PaymentPaidBy *uuid.UUID `gorm:"column:payment_paid_by;type:uuid" json:"payment_paid_by,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`

	Tenant     *profileModel.TenantProfileModel     `gorm:"foreignKey:PaymentTenantID;references:TenantProfileID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Assignment *assignmentModel.RoomAssignmentModel `gorm:"foreignKey:PaymentAssignmentID;references:RoomAssignmentID;constraint:OnDelete:SET NULL" json:"assignment,omitempty"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	return nil
}

// IsOverdue: pending dan jatuh tempo sudah lewat. today = tanggal kalender (UTC midnight).
func (m *PaymentModel) IsOverdue(today time.Time) bool {
	return m.PaymentStatus == PaymentStatusPending && m.PaymentDueDate.Before(today)
}

// DaysOverdue: 0 kalau belum terlambat.
func (m *PaymentModel) DaysOverdue(today time.Time) int {
	if !m.IsOverdue(today) {
		return 0
	}
	return int(today.Sub(m.PaymentDueDate).Hours() / 24)
}

// IsLate: dibayar setelah jatuh tempo, atau masih pending dan sudah terlambat.
func (m *PaymentModel) IsLate(today time.Time) bool {
	if m.PaymentStatus == PaymentStatusPaid && m.PaymentPaymentDate != nil {
		return m.PaymentPaymentDate.After(m.PaymentDueDate)
	}
	return m.IsOverdue(today)
}
