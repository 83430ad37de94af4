package dto

import (
	"time"

	"github.com/google/uuid"

	"kosan_backend/internals/features/tenants/profiles/model"
)

// ProfileFields dipakai saat registrasi penyewa dan saat update.
type ProfileFields struct {
	IDNumber              *string `json:"tenant_profile_id_number" validate:"omitempty,max=30"`
	EmergencyContactName  *string `json:"tenant_profile_emergency_contact_name" validate:"omitempty,max=150"`
	EmergencyContactPhone *string `json:"tenant_profile_emergency_contact_phone" validate:"omitempty,max=20"`
	Occupation            *string `json:"tenant_profile_occupation" validate:"omitempty,max=100"`
}

func (f ProfileFields) ApplyTo(m *model.TenantProfileModel) {
	if f.IDNumber != nil {
		m.TenantProfileIDNumber = f.IDNumber
	}
	if f.EmergencyContactName != nil {
		m.TenantProfileEmergencyContactName = f.EmergencyContactName
	}
	if f.EmergencyContactPhone != nil {
		m.TenantProfileEmergencyContactPhone = f.EmergencyContactPhone
	}
	if f.Occupation != nil {
		m.TenantProfileOccupation = f.Occupation
	}
}

// Patch: hanya kolom yang dikirim.
func (f ProfileFields) Patch() map[string]any {
	patch := map[string]any{}
	if f.IDNumber != nil {
		patch["tenant_profile_id_number"] = *f.IDNumber
	}
	if f.EmergencyContactName != nil {
		patch["tenant_profile_emergency_contact_name"] = *f.EmergencyContactName
	}
	if f.EmergencyContactPhone != nil {
		patch["tenant_profile_emergency_contact_phone"] = *f.EmergencyContactPhone
	}
	if f.Occupation != nil {
		patch["tenant_profile_occupation"] = *f.Occupation
	}
	return patch
}

type UpdateTenantProfileRequest struct {
	ProfileFields
}

type ListTenantProfilesQuery struct {
	IsActive      *bool  `query:"is_active"`
	HasAssignment *bool  `query:"has_assignment"`
	Q             string `query:"q"`
}

type CurrentRoom struct {
	RoomID       uuid.UUID `json:"room_id"`
	RoomNumber   string    `json:"room_number"`
	AssignmentID uuid.UUID `json:"room_assignment_id"`
	MoveInDate   string    `json:"move_in_date"`
}

type TenantProfileResponse struct {
	TenantProfileID     uuid.UUID `json:"tenant_profile_id"`
	TenantProfileUserID uuid.UUID `json:"tenant_profile_user_id"`

	UserCode string  `json:"user_code"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`

	TenantProfileIDNumber              *string `json:"tenant_profile_id_number,omitempty"`
	TenantProfileEmergencyContactName  *string `json:"tenant_profile_emergency_contact_name,omitempty"`
	TenantProfileEmergencyContactPhone *string `json:"tenant_profile_emergency_contact_phone,omitempty"`
	TenantProfileOccupation            *string `json:"tenant_profile_occupation,omitempty"`
	TenantProfileIsActive              bool    `json:"tenant_profile_is_active"`

	CurrentRoom *CurrentRoom `json:"current_room,omitempty"`

	TenantProfileCreatedAt time.Time `json:"tenant_profile_created_at"`
}

func FromModel(m *model.TenantProfileModel, current *CurrentRoom) TenantProfileResponse {
	r := TenantProfileResponse{
		TenantProfileID:                    m.TenantProfileID,
		TenantProfileUserID:                m.TenantProfileUserID,
		TenantProfileIDNumber:              m.TenantProfileIDNumber,
		TenantProfileEmergencyContactName:  m.TenantProfileEmergencyContactName,
		TenantProfileEmergencyContactPhone: m.TenantProfileEmergencyContactPhone,
		TenantProfileOccupation:            m.TenantProfileOccupation,
		TenantProfileIsActive:              m.TenantProfileIsActive,
		CurrentRoom:                        current,
		TenantProfileCreatedAt:             m.TenantProfileCreatedAt,
	}
	if m.User != nil {
		r.UserCode = m.User.UserCode
		r.FullName = m.User.DisplayName()
		r.Email = m.User.Email
		r.Phone = m.User.Phone
	}
	return r
}
