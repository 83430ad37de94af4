package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "single"
	RoomTypeDouble RoomType = "double"
	RoomTypeShared RoomType = "shared"
)

// MaxCapacity: batas kapasitas per tipe kamar.
func (t RoomType) MaxCapacity() int {
	switch t {
	case RoomTypeSingle:
		return 1
	case RoomTypeDouble:
		return 2
	default:
		return 10
	}
}

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

type RoomModel struct {
	RoomID uuid.UUID `gorm:"column:room_id;type:uuid;primaryKey" json:"room_id"`

	RoomNumber   string          `gorm:"column:room_number;type:varchar(10);not null;uniqueIndex:uq_rooms_number" json:"room_number"`
	RoomType     RoomType        `gorm:"column:room_type;type:varchar(10);not null" json:"room_type"`
	RoomFloor    int             `gorm:"column:room_floor;not null;check:chk_rooms_floor,room_floor >= 1" json:"room_floor"`
	RoomCapacity int             `gorm:"column:room_capacity;not null;check:chk_rooms_capacity,room_capacity BETWEEN 1 AND 10" json:"room_capacity"`
	RoomPrice    decimal.Decimal `gorm:"column:room_price;type:numeric(12,2);not null;check:chk_rooms_price,room_price > 0" json:"room_price"`
	RoomStatus   RoomStatus      `gorm:"column:room_status;type:varchar(20);not null;index:idx_rooms_status" json:"room_status"`

	RoomFacilities  datatypes.JSON `gorm:"column:room_facilities" json:"room_facilities"`
	RoomDescription *string        `gorm:"column:room_description;type:text" json:"room_description,omitempty"`

	RoomCreatedAt time.Time `gorm:"column:room_created_at;autoCreateTime" json:"room_created_at"`
	RoomUpdatedAt time.Time `gorm:"column:room_updated_at;autoUpdateTime" json:"room_updated_at"`
}

func (RoomModel) TableName() string { return "rooms" }

func (m *RoomModel) BeforeCreate(tx *gorm.DB) error {
	if m.RoomID == uuid.Nil {
		m.RoomID = uuid.New()
	}
	return nil
}

func (m *RoomModel) IsAvailable() bool { return m.RoomStatus == RoomStatusAvailable }
