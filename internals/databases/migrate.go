package database

import (
	"fmt"

	"gorm.io/gorm"

	commentModel "kosan_backend/internals/features/complaints/comments/model"
	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	paymentModel "kosan_backend/internals/features/payments/payments/model"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	authModel "kosan_backend/internals/features/users/auth/model"
	userModel "kosan_backend/internals/features/users/user/model"
	"kosan_backend/internals/helpers/sequence"
)

// Models: urutan mengikuti dependensi FK.
func Models() []any {
	return []any{
		&sequence.DisplaySequence{},
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&roomModel.RoomModel{},
		&profileModel.TenantProfileModel{},
		&assignmentModel.RoomAssignmentModel{},
		&paymentModel.PaymentModel{},
		&complaintModel.ComplaintModel{},
		&commentModel.ComplaintCommentModel{},
	}
}

// Index parsial: hanya satu penempatan aktif per kamar dan per penyewa.
// Pelanggaran index ini adalah sumber utama Conflict di AssignRoom.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_room_assignments_current_room
		ON room_assignments (room_assignment_room_id) WHERE room_assignment_is_current = TRUE`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_room_assignments_current_tenant
		ON room_assignments (room_assignment_tenant_id) WHERE room_assignment_is_current = TRUE`,
}

// Migrate: AutoMigrate semua model + index parsial. Dipakai server, CLI, dan test.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("partial index: %w", err)
		}
	}
	return nil
}
