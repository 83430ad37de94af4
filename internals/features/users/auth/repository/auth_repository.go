package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "kosan_backend/internals/features/users/auth/model"
	userModel "kosan_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IsUserActive: false juga kalau user tidak ada.
func IsUserActive(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var n int64
	err := db.Model(&userModel.UserModel{}).
		Where("id = ? AND is_active = ?", userID, true).
		Count(&n).Error
	return n > 0, err
}

/* ====================== BLACKLIST TOKEN ====================== */

// BlacklistToken idempotent: token yang sama cukup sekali.
func BlacklistToken(db *gorm.DB, token string, expiredAt time.Time) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&authModel.TokenBlacklist{
		Token:     token,
		ExpiredAt: expiredAt.UTC(),
	}).Error
}

func IsTokenBlacklisted(db *gorm.DB, token string) (bool, error) {
	var n int64
	err := db.Model(&authModel.TokenBlacklist{}).Where("token = ?", token).Count(&n).Error
	return n > 0, err
}

func CleanupExpiredBlacklist(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expired_at <= ?", now.UTC()).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
