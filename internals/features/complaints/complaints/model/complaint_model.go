package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	userModel "kosan_backend/internals/features/users/user/model"
)

type ComplaintCategory string

const (
	CategoryMaintenance ComplaintCategory = "maintenance"
	CategoryFacilities  ComplaintCategory = "facilities"
	CategoryCleanliness ComplaintCategory = "cleanliness"
	CategoryNoise       ComplaintCategory = "noise"
	CategorySecurity    ComplaintCategory = "security"
	CategoryOther       ComplaintCategory = "other"
)

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
	PriorityUrgent ComplaintPriority = "urgent"
)

type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "open"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

var (
	AllCategories = []ComplaintCategory{CategoryMaintenance, CategoryFacilities, CategoryCleanliness, CategoryNoise, CategorySecurity, CategoryOther}
	AllPriorities = []ComplaintPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	AllStatuses   = []ComplaintStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
)

// IsFinal: resolved/closed tidak bisa kembali ke open/in_progress.
func (s ComplaintStatus) IsFinal() bool {
	return s == StatusResolved || s == StatusClosed
}

// CanTransitionTo: open → in_progress → resolved → closed, plus open/in_progress → closed
// dan open → resolved. Status yang sama dianggap no-op.
func (s ComplaintStatus) CanTransitionTo(next ComplaintStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusOpen:
		return next == StatusInProgress || next == StatusResolved || next == StatusClosed
	case StatusInProgress:
		return next == StatusResolved || next == StatusClosed
	case StatusResolved:
		return next == StatusClosed
	default:
		return false
	}
}

type ComplaintModel struct {
	ComplaintID       uuid.UUID  `gorm:"column:complaint_id;type:uuid;primaryKey" json:"complaint_id"`
	ComplaintTenantID uuid.UUID  `gorm:"column:complaint_tenant_id;type:uuid;not null;index" json:"complaint_tenant_id"`
	ComplaintRoomID   *uuid.UUID `gorm:"column:complaint_room_id;type:uuid;index" json:"complaint_room_id,omitempty"`

	ComplaintTitle       string            `gorm:"column:complaint_title;type:varchar(200);not null" json:"complaint_title"`
	ComplaintDescription string            `gorm:"column:complaint_description;type:text;not null" json:"complaint_description"`
	ComplaintCategory    ComplaintCategory `gorm:"column:complaint_category;type:varchar(20);not null;index" json:"complaint_category"`
	ComplaintPriority    ComplaintPriority `gorm:"column:complaint_priority;type:varchar(10);not null;index" json:"complaint_priority"`
	ComplaintStatus      ComplaintStatus   `gorm:"column:complaint_status;type:varchar(20);not null;index" json:"complaint_status"`

	ComplaintAttachmentURL   *string    `gorm:"column:complaint_attachment_url;type:text" json:"complaint_attachment_url,omitempty"`
	ComplaintResolutionNotes *string    `gorm:"column:complaint_resolution_notes;type:text" json:"complaint_resolution_notes,omitempty"`
	ComplaintResolvedAt      *time.Time `gorm:"column:complaint_resolved_at" json:"complaint_resolved_at,omitempty"`
	ComplaintResolvedBy      *uuid.UUID `gorm:"column:complaint_resolved_by;type:uuid" json:"complaint_resolved_by,omitempty"`

	ComplaintCreatedAt time.Time `gorm:"column:complaint_created_at;autoCreateTime;index" json:"complaint_created_at"`
	ComplaintUpdatedAt time.Time `gorm:"column:complaint_updated_at;autoUpdateTime" json:"complaint_updated_at"`

	Tenant   *profileModel.TenantProfileModel `gorm:"foreignKey:ComplaintTenantID;references:TenantProfileID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Room     *roomModel.RoomModel             `gorm:"foreignKey:ComplaintRoomID;references:RoomID;constraint:OnDelete:SET NULL" json:"room,omitempty"`
	Resolver *userModel.UserModel             `gorm:"foreignKey:ComplaintResolvedBy;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (ComplaintModel) TableName() string { return "complaints" }

func (m *ComplaintModel) BeforeCreate(tx *gorm.DB) error {
	if m.ComplaintID == uuid.Nil {
		m.ComplaintID = uuid.New()
	}
	return nil
}

// HasResolutionNotes: catatan penyelesaian tidak kosong.
func (m *ComplaintModel) HasResolutionNotes() bool {
	return m.ComplaintResolutionNotes != nil && len(*m.ComplaintResolutionNotes) > 0
}
