package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserCode string    `gorm:"type:varchar(20);uniqueIndex:uq_users_code;not null" json:"user_code"`
	UserName string    `gorm:"size:50;not null" json:"user_name"`
	FullName string    `gorm:"size:150;not null" json:"full_name"`
	Email    string    `gorm:"size:255;uniqueIndex:uq_users_email;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Phone    *string   `gorm:"size:20" json:"phone,omitempty"`

	// role tidak berubah setelah dibuat
	Role     string `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName: nama lengkap, fallback ke username.
func (u *UserModel) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.UserName
}
