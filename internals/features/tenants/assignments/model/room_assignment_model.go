package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/helpers/dbtime"
)

// RoomAssignmentModel: penempatan penyewa di kamar untuk satu rentang waktu.
// Maksimal satu baris is_current per kamar dan per penyewa (partial unique index, lihat databases.Migrate).
type RoomAssignmentModel struct {
	RoomAssignmentID   uuid.UUID `gorm:"column:room_assignment_id;type:uuid;primaryKey" json:"room_assignment_id"`
	RoomAssignmentCode string    `gorm:"column:room_assignment_code;type:varchar(20);not null;uniqueIndex:uq_room_assignments_code" json:"room_assignment_code"`

	RoomAssignmentTenantID uuid.UUID `gorm:"column:room_assignment_tenant_id;type:uuid;not null;index" json:"room_assignment_tenant_id"`
	RoomAssignmentRoomID   uuid.UUID `gorm:"column:room_assignment_room_id;type:uuid;not null;index" json:"room_assignment_room_id"`

	RoomAssignmentMoveInDate   time.Time  `gorm:"column:room_assignment_move_in_date;type:date;not null" json:"room_assignment_move_in_date"`
	RoomAssignmentLeaseEndDate *time.Time `gorm:"column:room_assignment_lease_end_date;type:date;check:chk_room_assignments_lease_end,room_assignment_lease_end_date IS NULL OR room_assignment_lease_end_date >= room_assignment_move_in_date" json:"room_assignment_lease_end_date,omitempty"`
	RoomAssignmentMoveOutDate  *time.Time `gorm:"column:room_assignment_move_out_date;type:date;check:chk_room_assignments_move_out,room_assignment_move_out_date IS NULL OR room_assignment_move_out_date >= room_assignment_move_in_date" json:"room_assignment_move_out_date,omitempty"`

	RoomAssignmentIsCurrent   bool            `gorm:"column:room_assignment_is_current;not null;index" json:"room_assignment_is_current"`
	RoomAssignmentMonthlyRent decimal.Decimal `gorm:"column:room_assignment_monthly_rent;type:numeric(12,2);not null;check:chk_room_assignments_rent,room_assignment_monthly_rent > 0" json:"room_assignment_monthly_rent"`
	RoomAssignmentNotes       *string         `gorm:"column:room_assignment_notes;type:text" json:"room_assignment_notes,omitempty"`

	RoomAssignmentCreatedAt time.Time `gorm:"column:room_assignment_created_at;autoCreateTime" json:"room_assignment_created_at"`
	RoomAssignmentUpdatedAt time.Time `gorm:"column:room_assignment_updated_at;autoUpdateTime" json:"room_assignment_updated_at"`

	Tenant *profileModel.TenantProfileModel `gorm:"foreignKey:RoomAssignmentTenantID;references:TenantProfileID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Room   *roomModel.RoomModel             `gorm:"foreignKey:RoomAssignmentRoomID;references:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
}

func (RoomAssignmentModel) TableName() string { return "room_assignments" }

func (m *RoomAssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoomAssignmentID == uuid.Nil {
		m.RoomAssignmentID = uuid.New()
	}
	return nil
}

// DurationDays: (move_out atau today) - move_in.
func (m *RoomAssignmentModel) DurationDays(today time.Time) int {
	end := today
	if m.RoomAssignmentMoveOutDate != nil {
		end = *m.RoomAssignmentMoveOutDate
	}
	return dbtime.DaysBetween(m.RoomAssignmentMoveInDate, end)
}

// DurationMonths: hari/30, dibulatkan 1 desimal.
func (m *RoomAssignmentModel) DurationMonths(today time.Time) float64 {
	return math.Round(float64(m.DurationDays(today))/30*10) / 10
}
