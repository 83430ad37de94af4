package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	paymentModel "kosan_backend/internals/features/payments/payments/model"
)

type PaymentHistoryItem struct {
	PaymentID   uuid.UUID                  `json:"payment_id"`
	Month       int                        `json:"month"`
	Year        int                        `json:"year"`
	MonthName   string                     `json:"month_name"`
	PeriodLabel string                     `json:"period_label"`
	Amount      decimal.Decimal            `json:"amount"`
	Status      paymentModel.PaymentStatus `json:"status"`
	DueDate     string                     `json:"due_date"`
	PaymentDate *string                    `json:"payment_date"`
	IsLate      bool                       `json:"is_late"`
}

// PaymentSummary: unpaid = masih pending (termasuk yang terlambat).
type PaymentSummary struct {
	Total  int `json:"total"`
	OnTime int `json:"on_time"`
	Late   int `json:"late"`
	Unpaid int `json:"unpaid"`
}

type ComplaintMonth struct {
	Month      int            `json:"month"`
	Year       int            `json:"year"`
	MonthName  string         `json:"month_name"`
	Count      int            `json:"count"`
	Categories []string       `json:"categories"`
	Statuses   map[string]int `json:"statuses"`
}

type ComplaintSummary struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

type TenantHistoryResponse struct {
	UserID           uuid.UUID            `json:"user_id"`
	UserName         string               `json:"user_name"`
	From             string               `json:"from"`
	To               string               `json:"to"`
	PaymentSummary   PaymentSummary       `json:"payment_summary"`
	PaymentHistory   []PaymentHistoryItem `json:"payment_history"`
	ComplaintSummary ComplaintSummary     `json:"complaint_summary"`
	ComplaintHistory []ComplaintMonth     `json:"complaint_history"`
}
