// Package kosan mengisi data awal (admin, kamar, penyewa, penempatan, keluhan).
// Semua data lewat service supaya aturan ledger tetap berlaku; seed aman dijalankan ulang.
package kosan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	complaintDto "kosan_backend/internals/features/complaints/complaints/dto"
	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	complaintService "kosan_backend/internals/features/complaints/complaints/service"
	roomDto "kosan_backend/internals/features/rooms/rooms/dto"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	roomService "kosan_backend/internals/features/rooms/rooms/service"
	assignmentDto "kosan_backend/internals/features/tenants/assignments/dto"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	assignmentService "kosan_backend/internals/features/tenants/assignments/service"
	profileDto "kosan_backend/internals/features/tenants/profiles/dto"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	userDto "kosan_backend/internals/features/users/user/dto"
	userModel "kosan_backend/internals/features/users/user/model"
	userService "kosan_backend/internals/features/users/user/service"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type AdminSeed struct {
	UserName string  `json:"user_name"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type RoomSeed struct {
	RoomNumber     string             `json:"room_number"`
	RoomType       roomModel.RoomType `json:"room_type"`
	RoomFloor      int                `json:"room_floor"`
	RoomCapacity   int                `json:"room_capacity"`
	RoomPrice      decimal.Decimal    `json:"room_price"`
	RoomFacilities []string           `json:"room_facilities"`
}

type TenantSeed struct {
	AdminSeed
	profileDto.ProfileFields

	RoomNumber string `json:"room_number"`
	MoveInDate string `json:"move_in_date"`
}

type ComplaintSeed struct {
	Email       string                           `json:"email"`
	Title       string                           `json:"complaint_title"`
	Description string                           `json:"complaint_description"`
	Category    complaintModel.ComplaintCategory `json:"complaint_category"`
	Priority    complaintModel.ComplaintPriority `json:"complaint_priority"`
}

type Data struct {
	Admins     []AdminSeed     `json:"admins"`
	Rooms      []RoomSeed      `json:"rooms"`
	Tenants    []TenantSeed    `json:"tenants"`
	Complaints []ComplaintSeed `json:"complaints"`
}

func ReadData(filePath string) (*Data, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("baca %s: %w", filePath, err)
	}
	var d Data
	if err := sonic.Unmarshal(file, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return &d, nil
}

func SeedKosanFromJSON(ctx context.Context, db *gorm.DB, logger *zap.Logger, filePath string) error {
	log.Println("📥 Membaca file seed:", filePath)
	d, err := ReadData(filePath)
	if err != nil {
		return err
	}
	return Seed(ctx, db, logger, d)
}

// Seed: urutan admin → kamar → penyewa (+ penempatan) → keluhan.
func Seed(ctx context.Context, db *gorm.DB, logger *zap.Logger, d *Data) error {
	system := helperAuth.SystemActor()
	users := userService.NewUserService(db, logger)
	rooms := roomService.NewRoomService(db, logger)
	assignments := assignmentService.NewAssignmentService(db, logger)
	complaints := complaintService.NewComplaintService(db, logger, nil)

	for _, a := range d.Admins {
		if exists, err := userExists(db, a.Email); err != nil {
			return err
		} else if exists {
			log.Printf("ℹ️ User %s sudah ada, dilewati.", a.Email)
			continue
		}
		if _, err := users.CreateUser(ctx, system, userDto.CreateUserRequest{
			UserName: a.UserName, FullName: a.FullName, Email: a.Email,
			Password: a.Password, Phone: a.Phone, Role: constants.RoleAdmin,
		}); err != nil {
			return fmt.Errorf("admin %s: %w", a.Email, err)
		}
	}

	roomIDs := map[string]roomModel.RoomModel{}
	for _, r := range d.Rooms {
		number := roomDto.NormalizeRoomNumber(r.RoomNumber)
		var existing roomModel.RoomModel
		err := db.Where("room_number = ?", number).First(&existing).Error
		if err == nil {
			log.Printf("ℹ️ Kamar %s sudah ada, dilewati.", number)
			roomIDs[number] = existing
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		res, err := rooms.CreateRoom(ctx, system, roomDto.CreateRoomRequest{
			RoomNumber: r.RoomNumber, RoomType: r.RoomType, RoomFloor: r.RoomFloor,
			RoomCapacity: r.RoomCapacity, RoomPrice: r.RoomPrice, RoomFacilities: r.RoomFacilities,
		})
		if err != nil {
			return fmt.Errorf("kamar %s: %w", number, err)
		}
		roomIDs[number] = roomModel.RoomModel{RoomID: res.RoomID, RoomNumber: res.RoomNumber}
	}

	for _, t := range d.Tenants {
		if exists, err := userExists(db, t.Email); err != nil {
			return err
		} else if exists {
			log.Printf("ℹ️ Penyewa %s sudah ada, dilewati.", t.Email)
			continue
		}
		res, err := users.CreateTenantUser(ctx, system, userDto.CreateTenantUserRequest{
			UserName: t.UserName, FullName: t.FullName, Email: t.Email,
			Password: t.Password, Phone: t.Phone, ProfileFields: t.ProfileFields,
		})
		if err != nil {
			return fmt.Errorf("penyewa %s: %w", t.Email, err)
		}
		if t.RoomNumber == "" {
			continue
		}
		room, ok := roomIDs[roomDto.NormalizeRoomNumber(t.RoomNumber)]
		if !ok {
			return fmt.Errorf("penyewa %s: kamar %s tidak ada di seed", t.Email, t.RoomNumber)
		}
		if _, err := assignments.AssignRoom(ctx, system, assignmentDto.AssignRoomRequest{
			TenantID:   res.Profile.TenantProfileID,
			RoomID:     room.RoomID,
			MoveInDate: t.MoveInDate,
		}); err != nil {
			return fmt.Errorf("penempatan %s: %w", t.Email, err)
		}
	}

	for _, c := range d.Complaints {
		var u userModel.UserModel
		if err := db.Where("email = ?", c.Email).First(&u).Error; err != nil {
			return fmt.Errorf("keluhan %q: user %s: %w", c.Title, c.Email, err)
		}
		var n int64
		if err := db.Model(&complaintModel.ComplaintModel{}).
			Joins("JOIN tenant_profiles ON tenant_profiles.tenant_profile_id = complaints.complaint_tenant_id").
			Where("tenant_profiles.tenant_profile_user_id = ? AND complaints.complaint_title = ?", u.ID, c.Title).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			log.Printf("ℹ️ Keluhan %q sudah ada, dilewati.", c.Title)
			continue
		}
		if _, err := complaints.Create(ctx, helperAuth.TenantActor(u.ID), complaintDto.CreateComplaintRequest{
			Title: c.Title, Description: c.Description, Category: c.Category, Priority: c.Priority,
		}); err != nil {
			return fmt.Errorf("keluhan %q: %w", c.Title, err)
		}
	}

	var counts struct{ users, rooms, profiles, assignments int64 }
	db.Model(&userModel.UserModel{}).Count(&counts.users)
	db.Model(&roomModel.RoomModel{}).Count(&counts.rooms)
	db.Model(&profileModel.TenantProfileModel{}).Count(&counts.profiles)
	db.Model(&assignmentModel.RoomAssignmentModel{}).Where("room_assignment_is_current = ?", true).Count(&counts.assignments)
	log.Printf("✅ Seed selesai: %d user, %d kamar, %d penyewa, %d penempatan aktif",
		counts.users, counts.rooms, counts.profiles, counts.assignments)
	return nil
}

func userExists(db *gorm.DB, email string) (bool, error) {
	var n int64
	if err := db.Model(&userModel.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
