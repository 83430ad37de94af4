package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kosan_backend/internals/features/tenants/assignments/model"
	"kosan_backend/internals/helpers/dbtime"
)

type AssignRoomRequest struct {
	TenantID     uuid.UUID        `json:"tenant_id" validate:"required"`
	RoomID       uuid.UUID        `json:"room_id" validate:"required"`
	MoveInDate   string           `json:"move_in_date" validate:"required,datetime=2006-01-02"`
	LeaseEndDate *string          `json:"lease_end_date" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent  *decimal.Decimal `json:"monthly_rent"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
}

type EndAssignmentRequest struct {
	MoveOutDate *string `json:"move_out_date" validate:"omitempty,datetime=2006-01-02"`
}

type ChangeRoomRequest struct {
	NewRoomID   uuid.UUID        `json:"new_room_id" validate:"required"`
	MoveInDate  *string          `json:"move_in_date" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent *decimal.Decimal `json:"monthly_rent"`
	Notes       *string          `json:"notes" validate:"omitempty,max=2000"`
}

type ListAssignmentsQuery struct {
	TenantID  *uuid.UUID `query:"tenant_id"`
	RoomID    *uuid.UUID `query:"room_id"`
	IsCurrent *bool      `query:"is_current"`
}

type AssignmentResponse struct {
	RoomAssignmentID   uuid.UUID `json:"room_assignment_id"`
	RoomAssignmentCode string    `json:"room_assignment_code"`

	TenantID   uuid.UUID `json:"tenant_id"`
	TenantName string    `json:"tenant_name,omitempty"`
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number,omitempty"`

	MoveInDate   string  `json:"move_in_date"`
	LeaseEndDate *string `json:"lease_end_date,omitempty"`
	MoveOutDate  *string `json:"move_out_date,omitempty"`

	IsCurrent      bool            `json:"is_current"`
	MonthlyRent    decimal.Decimal `json:"monthly_rent"`
	Notes          *string         `json:"notes,omitempty"`
	DurationDays   int             `json:"duration_days"`
	DurationMonths float64         `json:"duration_months"`

	CreatedAt time.Time `json:"created_at"`
}

// FromModel: today dipakai untuk durasi penempatan yang masih berjalan.
func FromModel(m *model.RoomAssignmentModel, today time.Time) AssignmentResponse {
	r := AssignmentResponse{
		RoomAssignmentID:   m.RoomAssignmentID,
		RoomAssignmentCode: m.RoomAssignmentCode,
		TenantID:           m.RoomAssignmentTenantID,
		RoomID:             m.RoomAssignmentRoomID,
		MoveInDate:         dbtime.FormatDate(m.RoomAssignmentMoveInDate),
		LeaseEndDate:       dbtime.FormatDatePtr(m.RoomAssignmentLeaseEndDate),
		MoveOutDate:        dbtime.FormatDatePtr(m.RoomAssignmentMoveOutDate),
		IsCurrent:          m.RoomAssignmentIsCurrent,
		MonthlyRent:        m.RoomAssignmentMonthlyRent,
		Notes:              m.RoomAssignmentNotes,
		DurationDays:       m.DurationDays(today),
		DurationMonths:     m.DurationMonths(today),
		CreatedAt:          m.RoomAssignmentCreatedAt,
	}
	if m.Tenant != nil {
		r.TenantName = m.Tenant.Name()
	}
	if m.Room != nil {
		r.RoomNumber = m.Room.RoomNumber
	}
	return r
}

func FromModelList(rows []model.RoomAssignmentModel, today time.Time) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], today))
	}
	return out
}
