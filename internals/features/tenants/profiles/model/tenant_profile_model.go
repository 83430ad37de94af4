package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userModel "kosan_backend/internals/features/users/user/model"
)

// TenantProfileModel: 1:1 dengan user ber-role tenant. Tidak pernah dihapus permanen.
type TenantProfileModel struct {
	TenantProfileID     uuid.UUID `gorm:"column:tenant_profile_id;type:uuid;primaryKey" json:"tenant_profile_id"`
	TenantProfileUserID uuid.UUID `gorm:"column:tenant_profile_user_id;type:uuid;not null;uniqueIndex:uq_tenant_profiles_user" json:"tenant_profile_user_id"`

	TenantProfileIDNumber              *string `gorm:"column:tenant_profile_id_number;type:varchar(30)" json:"tenant_profile_id_number,omitempty"`
	TenantProfileEmergencyContactName  *string `gorm:"column:tenant_profile_emergency_contact_name;type:varchar(150)" json:"tenant_profile_emergency_contact_name,omitempty"`
	TenantProfileEmergencyContactPhone *string `gorm:"column:tenant_profile_emergency_contact_phone;type:varchar(20)" json:"tenant_profile_emergency_contact_phone,omitempty"`
	TenantProfileOccupation            *string `gorm:"column:tenant_profile_occupation;type:varchar(100)" json:"tenant_profile_occupation,omitempty"`

	TenantProfileIsActive bool `gorm:"column:tenant_profile_is_active;not null;index" json:"tenant_profile_is_active"`

	TenantProfileCreatedAt time.Time `gorm:"column:tenant_profile_created_at;autoCreateTime" json:"tenant_profile_created_at"`
	TenantProfileUpdatedAt time.Time `gorm:"column:tenant_profile_updated_at;autoUpdateTime" json:"tenant_profile_updated_at"`

	User *userModel.UserModel `gorm:"foreignKey:TenantProfileUserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (TenantProfileModel) TableName() string { return "tenant_profiles" }

func (m *TenantProfileModel) BeforeCreate(tx *gorm.DB) error {
	if m.TenantProfileID == uuid.Nil {
		m.TenantProfileID = uuid.New()
	}
	return nil
}

// Name: nama penyewa dari relasi User (harus di-preload).
func (m *TenantProfileModel) Name() string {
	if m.User == nil {
		return ""
	}
	return m.User.DisplayName()
}
