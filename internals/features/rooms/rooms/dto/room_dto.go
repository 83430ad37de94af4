package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"

	"kosan_backend/internals/features/rooms/rooms/model"
)

/* =======================================================
   NULLABLE HELPER (PATCH tri-state: absen / null / nilai)
   ======================================================= */

type NullableString struct {
	Present bool
	Valid   bool
	Value   string
}

func (ns *NullableString) UnmarshalJSON(b []byte) error {
	ns.Present = true
	if string(b) == "null" {
		ns.Valid = false
		ns.Value = ""
		return nil
	}
	ns.Valid = true
	return json.Unmarshal(b, &ns.Value)
}

// NormalizeRoomNumber: NFKC, trim, upper-case ("ａ１０２ " → "A102").
func NormalizeRoomNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(s)))
}

/* =======================================================
   REQUEST DTOs
   ======================================================= */

type CreateRoomRequest struct {
	RoomNumber      string          `json:"room_number" validate:"required,max=10"`
	RoomType        model.RoomType  `json:"room_type" validate:"required,oneof=single double shared"`
	RoomFloor       int             `json:"room_floor" validate:"required,min=1"`
	RoomCapacity    int             `json:"room_capacity" validate:"required,min=1,max=10"`
	RoomPrice       decimal.Decimal `json:"room_price"`
	RoomStatus      string          `json:"room_status" validate:"omitempty,oneof=available maintenance"`
	RoomFacilities  []string        `json:"room_facilities" validate:"omitempty,dive,max=60"`
	RoomDescription *string         `json:"room_description" validate:"omitempty,max=2000"`
}

func (r *CreateRoomRequest) Normalize() {
	r.RoomNumber = NormalizeRoomNumber(r.RoomNumber)
	r.RoomType = model.RoomType(strings.ToLower(strings.TrimSpace(string(r.RoomType))))
	r.RoomStatus = strings.ToLower(strings.TrimSpace(r.RoomStatus))
	r.RoomFacilities = cleanFacilities(r.RoomFacilities)
}

// Status kamar tidak diubah di sini (lihat SetMaintenance dan penempatan).
type UpdateRoomRequest struct {
	RoomNumber      *string          `json:"room_number" validate:"omitempty,max=10"`
	RoomType        *model.RoomType  `json:"room_type" validate:"omitempty,oneof=single double shared"`
	RoomFloor       *int             `json:"room_floor" validate:"omitempty,min=1"`
	RoomCapacity    *int             `json:"room_capacity" validate:"omitempty,min=1,max=10"`
	RoomPrice       *decimal.Decimal `json:"room_price"`
	RoomFacilities  *[]string        `json:"room_facilities"`
	RoomDescription NullableString   `json:"room_description"`
}

type SetMaintenanceRequest struct {
	Maintenance bool `json:"maintenance"`
}

type ListRoomsQuery struct {
	Status   string   `query:"status" validate:"omitempty,oneof=available occupied maintenance"`
	RoomType string   `query:"room_type" validate:"omitempty,oneof=single double shared"`
	Floor    *int     `query:"floor"`
	MinPrice *float64 `query:"min_price"`
	MaxPrice *float64 `query:"max_price"`
	Q        string   `query:"q"`
}

func cleanFacilities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

func FacilitiesJSON(in []string) datatypes.JSON {
	b, _ := json.Marshal(cleanFacilities(in))
	return datatypes.JSON(b)
}

/* =======================================================
   RESPONSE
   ======================================================= */

type RoomResponse struct {
	RoomID          uuid.UUID        `json:"room_id"`
	RoomNumber      string           `json:"room_number"`
	RoomType        model.RoomType   `json:"room_type"`
	RoomFloor       int              `json:"room_floor"`
	RoomCapacity    int              `json:"room_capacity"`
	RoomPrice       decimal.Decimal  `json:"room_price"`
	RoomStatus      model.RoomStatus `json:"room_status"`
	RoomIsAvailable bool             `json:"room_is_available"`
	RoomFacilities  []string         `json:"room_facilities"`
	RoomDescription *string          `json:"room_description,omitempty"`
	RoomCreatedAt   time.Time        `json:"room_created_at"`
	RoomUpdatedAt   time.Time        `json:"room_updated_at"`
}

func FromModel(m *model.RoomModel) RoomResponse {
	facilities := []string{}
	if len(m.RoomFacilities) > 0 {
		_ = json.Unmarshal(m.RoomFacilities, &facilities)
	}
	return RoomResponse{
		RoomID:          m.RoomID,
		RoomNumber:      m.RoomNumber,
		RoomType:        m.RoomType,
		RoomFloor:       m.RoomFloor,
		RoomCapacity:    m.RoomCapacity,
		RoomPrice:       m.RoomPrice,
		RoomStatus:      m.RoomStatus,
		RoomIsAvailable: m.IsAvailable(),
		RoomFacilities:  facilities,
		RoomDescription: m.RoomDescription,
		RoomCreatedAt:   m.RoomCreatedAt,
		RoomUpdatedAt:   m.RoomUpdatedAt,
	}
}

func FromModelList(rows []model.RoomModel) []RoomResponse {
	out := make([]RoomResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
