package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomSummary struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Occupied    int64 `json:"occupied"`
	Maintenance int64 `json:"maintenance"`
	// persen kamar terisi, satu desimal
	OccupancyRate float64 `json:"occupancy_rate"`
}

type PaymentSummary struct {
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	PeriodLabel  string          `json:"period_label"`
	PaidCount    int64           `json:"paid_count"`
	PendingCount int64           `json:"pending_count"`
	Revenue      decimal.Decimal `json:"revenue"`

	// semua periode
	OverdueCount  int64           `json:"overdue_count"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
}

type ComplaintSummary struct {
	Open       int64            `json:"open"`
	ByPriority map[string]int64 `json:"by_priority"`
}

type DashboardResponse struct {
	GeneratedAt        time.Time        `json:"generated_at"`
	Rooms              RoomSummary      `json:"rooms"`
	ActiveTenants      int64            `json:"active_tenants"`
	CurrentAssignments int64            `json:"current_assignments"`
	Payments           PaymentSummary   `json:"payments"`
	OpenComplaints     ComplaintSummary `json:"open_complaints"`
}
