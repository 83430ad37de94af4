package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/rooms/rooms/dto"
	"kosan_backend/internals/features/rooms/rooms/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
)

const msgRoomNumberTaken = "Nomor kamar sudah dipakai"

type RoomService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewRoomService(db *gorm.DB, log *zap.Logger) *RoomService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomService{DB: db, Log: log, Now: time.Now}
}

// validateShape: aturan kapasitas per tipe dan batas dasar.
func validateShape(t model.RoomType, capacity, floor int, price decimal.Decimal) error {
	switch t {
	case model.RoomTypeSingle, model.RoomTypeDouble, model.RoomTypeShared:
	default:
		return apperror.InvalidInput("Tipe kamar harus single, double, atau shared")
	}
	if floor < 1 {
		return apperror.InvalidInput("Lantai minimal 1")
	}
	if capacity < 1 || capacity > 10 {
		return apperror.InvalidInput("Kapasitas harus antara 1 dan 10")
	}
	if capacity > t.MaxCapacity() {
		switch t {
		case model.RoomTypeSingle:
			return apperror.InvalidInput("Kamar single hanya boleh berkapasitas 1")
		default:
			return apperror.InvalidInput("Kamar double maksimal berkapasitas 2")
		}
	}
	if !price.IsPositive() {
		return apperror.InvalidInput("Harga kamar harus lebih dari 0")
	}
	return nil
}

func requireAdmin(actor helperAuth.Actor, feature string) error {
	if actor.IsPrivileged() {
		return nil
	}
	return apperror.Forbidden(constants.RoleErrorAdmin(feature))
}

func FindRoom(db *gorm.DB, id uuid.UUID) (*model.RoomModel, error) {
	var m model.RoomModel
	if err := db.First(&m, "room_id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Kamar tidak ditemukan")
	}
	return &m, nil
}

func (s *RoomService) CreateRoom(ctx context.Context, actor helperAuth.Actor, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if err := requireAdmin(actor, "tambah kamar"); err != nil {
		return nil, err
	}
	req.Normalize()
	if req.RoomNumber == "" {
		return nil, apperror.InvalidInput("Nomor kamar wajib diisi")
	}
	if err := validateShape(req.RoomType, req.RoomCapacity, req.RoomFloor, req.RoomPrice); err != nil {
		return nil, err
	}
	status := model.RoomStatusAvailable
	switch req.RoomStatus {
	case "", string(model.RoomStatusAvailable):
	case string(model.RoomStatusMaintenance):
		status = model.RoomStatusMaintenance
	default:
		return nil, apperror.InvalidInput("Status awal kamar hanya available atau maintenance")
	}

	m := &model.RoomModel{
		RoomNumber:      req.RoomNumber,
		RoomType:        req.RoomType,
		RoomFloor:       req.RoomFloor,
		RoomCapacity:    req.RoomCapacity,
		RoomPrice:       req.RoomPrice,
		RoomStatus:      status,
		RoomFacilities:  dto.FacilitiesJSON(req.RoomFacilities),
		RoomDescription: req.RoomDescription,
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperror.FromDB(err, msgRoomNumberTaken)
	}
	s.Log.Info("room created", zap.String("room_id", m.RoomID.String()), zap.String("room_number", m.RoomNumber))
	out := dto.FromModel(m)
	return &out, nil
}

// UpdateRoom: parsial; aturan tipe/kapasitas dicek terhadap nilai gabungan.
func (s *RoomService) UpdateRoom(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	if err := requireAdmin(actor, "ubah kamar"); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	m, err := FindRoom(db, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.RoomNumber != nil {
		n := dto.NormalizeRoomNumber(*req.RoomNumber)
		if n == "" {
			return nil, apperror.InvalidInput("Nomor kamar wajib diisi")
		}
		m.RoomNumber = n
		patch["room_number"] = n
	}
	if req.RoomType != nil {
		m.RoomType = model.RoomType(strings.ToLower(string(*req.RoomType)))
		patch["room_type"] = m.RoomType
	}
	if req.RoomFloor != nil {
		m.RoomFloor = *req.RoomFloor
		patch["room_floor"] = m.RoomFloor
	}
	if req.RoomCapacity != nil {
		m.RoomCapacity = *req.RoomCapacity
		patch["room_capacity"] = m.RoomCapacity
	}
	if req.RoomPrice != nil {
		m.RoomPrice = *req.RoomPrice
		patch["room_price"] = m.RoomPrice
	}
	if req.RoomFacilities != nil {
		m.RoomFacilities = dto.FacilitiesJSON(*req.RoomFacilities)
		patch["room_facilities"] = m.RoomFacilities
	}
	if req.RoomDescription.Present {
		if req.RoomDescription.Valid {
			v := req.RoomDescription.Value
			m.RoomDescription = &v
			patch["room_description"] = v
		} else {
			m.RoomDescription = nil
			patch["room_description"] = nil
		}
	}
	if err := validateShape(m.RoomType, m.RoomCapacity, m.RoomFloor, m.RoomPrice); err != nil {
		return nil, err
	}

	if len(patch) > 0 {
		if err := db.Model(&model.RoomModel{}).Where("room_id = ?", id).Updates(patch).Error; err != nil {
			return nil, apperror.FromDB(err, msgRoomNumberTaken)
		}
	}
	m, err = FindRoom(db, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m)
	return &out, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id uuid.UUID) (*dto.RoomResponse, error) {
	m, err := FindRoom(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m)
	return &out, nil
}

var roomSortColumns = map[string]string{
	"room_number": "room_number",
	"floor":       "room_floor",
	"price":       "room_price",
	"created_at":  "room_created_at",
}

func (s *RoomService) ListRooms(ctx context.Context, q dto.ListRoomsQuery, p helper.Params) ([]dto.RoomResponse, int64, error) {
	tx := s.DB.WithContext(ctx).Model(&model.RoomModel{})
	if q.Status != "" {
		tx = tx.Where("room_status = ?", q.Status)
	}
	if q.RoomType != "" {
		tx = tx.Where("room_type = ?", q.RoomType)
	}
	if q.Floor != nil {
		tx = tx.Where("room_floor = ?", *q.Floor)
	}
	if q.MinPrice != nil {
		tx = tx.Where("room_price >= ?", decimal.NewFromFloat(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		tx = tx.Where("room_price <= ?", decimal.NewFromFloat(*q.MaxPrice))
	}
	if kw := strings.ToLower(dto.NormalizeRoomNumber(q.Q)); kw != "" {
		like := "%" + kw + "%"
		tx = tx.Where("LOWER(room_number) LIKE ? OR LOWER(COALESCE(room_description,'')) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung kamar", err)
	}
	order, err := p.OrderClause(roomSortColumns, "room_number")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}
	var rows []model.RoomModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil kamar", err)
	}
	return dto.FromModelList(rows), total, nil
}

func (s *RoomService) ListAvailableRooms(ctx context.Context) ([]dto.RoomResponse, error) {
	var rows []model.RoomModel
	if err := s.DB.WithContext(ctx).
		Where("room_status = ?", model.RoomStatusAvailable).
		Order("room_number ASC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil kamar", err)
	}
	return dto.FromModelList(rows), nil
}

func hasCurrentAssignment(tx *gorm.DB, roomID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&assignmentModel.RoomAssignmentModel{}).
		Where("room_assignment_room_id = ? AND room_assignment_is_current = ?", roomID, true).
		Count(&n).Error
	return n > 0, err
}

// DeleteRoom: hard delete, ditolak selama kamar terisi.
func (s *RoomService) DeleteRoom(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor, "hapus kamar"); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := FindRoom(tx, id)
		if err != nil {
			return err
		}
		busy, err := hasCurrentAssignment(tx, id)
		if err != nil {
			return apperror.Internal("Gagal memeriksa penempatan", err)
		}
		if m.RoomStatus == model.RoomStatusOccupied || busy {
			return apperror.PreconditionFailed("Kamar yang sedang terisi tidak bisa dihapus").WithCode(apperror.CodeRoomOccupied)
		}
		if err := tx.Delete(&model.RoomModel{}, "room_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Gagal menghapus kamar")
		}
		s.Log.Info("room deleted", zap.String("room_id", id.String()), zap.String("room_number", m.RoomNumber))
		return nil
	})
}

// SetMaintenance: on hanya dari available; off hanya dari maintenance.
func (s *RoomService) SetMaintenance(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, on bool) (*dto.RoomResponse, error) {
	if err := requireAdmin(actor, "status kamar"); err != nil {
		return nil, err
	}
	from, to := model.RoomStatusAvailable, model.RoomStatusMaintenance
	if !on {
		from, to = model.RoomStatusMaintenance, model.RoomStatusAvailable
	}

	var m *model.RoomModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = FindRoom(tx, id); err != nil {
			return err
		}
		if m.RoomStatus == to {
			return nil
		}
		if m.RoomStatus != from {
			if on {
				return apperror.Conflict("Kamar yang sedang terisi tidak bisa dijadikan maintenance").WithCode(apperror.CodeRoomOccupied)
			}
			return apperror.Conflict("Kamar tidak sedang dalam maintenance")
		}
		res := tx.Model(&model.RoomModel{}).
			Where("room_id = ? AND room_status = ?", id, from).
			Update("room_status", to)
		if res.Error != nil {
			return apperror.Internal("Gagal mengubah status kamar", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("Status kamar berubah, coba lagi")
		}
		m.RoomStatus = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m)
	return &out, nil
}
