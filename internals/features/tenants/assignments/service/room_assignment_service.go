package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	roomService "kosan_backend/internals/features/rooms/rooms/service"
	"kosan_backend/internals/features/tenants/assignments/dto"
	"kosan_backend/internals/features/tenants/assignments/model"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
	"kosan_backend/internals/helpers/sequence"
)

type AssignmentService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewAssignmentService(db *gorm.DB, log *zap.Logger) *AssignmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssignmentService{DB: db, Log: log, Now: time.Now}
}

func (s *AssignmentService) today() time.Time { return dbtime.Today(s.Now()) }

func requireAdmin(actor helperAuth.Actor, feature string) error {
	if actor.IsPrivileged() {
		return nil
	}
	return apperror.Forbidden(constants.RoleErrorAdmin(feature))
}

// assignInput: bentuk AssignRoomRequest yang tanggalnya sudah di-parse.
type assignInput struct {
	TenantID    uuid.UUID
	RoomID      uuid.UUID
	MoveIn      time.Time
	LeaseEnd    *time.Time
	MonthlyRent *decimal.Decimal
	Notes       *string
}

func parseAssign(req dto.AssignRoomRequest) (assignInput, error) {
	moveIn, err := dbtime.ParseDate(req.MoveInDate)
	if err != nil {
		return assignInput{}, apperror.ErrInvalidDate.Withf("Format move_in_date harus YYYY-MM-DD")
	}
	leaseEnd, err := dbtime.ParseDatePtr(req.LeaseEndDate)
	if err != nil {
		return assignInput{}, apperror.ErrInvalidDate.Withf("Format lease_end_date harus YYYY-MM-DD")
	}
	return assignInput{
		TenantID:    req.TenantID,
		RoomID:      req.RoomID,
		MoveIn:      moveIn,
		LeaseEnd:    leaseEnd,
		MonthlyRent: req.MonthlyRent,
		Notes:       req.Notes,
	}, nil
}

func findCurrent(tx *gorm.DB, column string, id uuid.UUID) (*model.RoomAssignmentModel, error) {
	var rows []model.RoomAssignmentModel
	if err := tx.Where(column+" = ? AND room_assignment_is_current = ?", id, true).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// assignTx menempatkan penyewa di kamar. Harus dipanggil di dalam transaksi.
func assignTx(tx *gorm.DB, in assignInput) (*model.RoomAssignmentModel, error) {
	tenant, err := profileService.FindByID(tx, in.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.TenantProfileIsActive {
		return nil, apperror.InvalidInput("Penyewa tidak aktif")
	}
	room, err := roomService.FindRoom(tx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if in.LeaseEnd != nil && in.LeaseEnd.Before(in.MoveIn) {
		return nil, apperror.ErrInvalidDate.Withf("Tanggal akhir sewa tidak boleh sebelum tanggal masuk")
	}

	if cur, err := findCurrent(tx, "room_assignment_room_id", room.RoomID); err != nil {
		return nil, apperror.Internal("Gagal memeriksa penempatan kamar", err)
	} else if cur != nil {
		return nil, apperror.Conflict("Kamar " + room.RoomNumber + " sudah ditempati").WithCode(apperror.CodeRoomOccupied)
	}
	if cur, err := findCurrent(tx, "room_assignment_tenant_id", tenant.TenantProfileID); err != nil {
		return nil, apperror.Internal("Gagal memeriksa penempatan penyewa", err)
	} else if cur != nil {
		return nil, apperror.Conflict("Penyewa masih menempati kamar lain").WithCode(apperror.CodeTenantHasAssignment)
	}
	if room.RoomStatus != roomModel.RoomStatusAvailable {
		return nil, apperror.Conflict("Kamar " + room.RoomNumber + " tidak tersedia (" + string(room.RoomStatus) + ")").
			WithCode(apperror.CodeRoomNotAvailable)
	}

	rent := room.RoomPrice
	if in.MonthlyRent != nil {
		rent = *in.MonthlyRent
	}
	if !rent.IsPositive() {
		return nil, apperror.InvalidInput("Harga sewa bulanan harus lebih dari 0")
	}

	code, err := sequence.NextCode(tx, sequence.Assignment)
	if err != nil {
		return nil, apperror.Internal("Gagal membuat kode penempatan", err)
	}
	a := &model.RoomAssignmentModel{
		RoomAssignmentCode:         code,
		RoomAssignmentTenantID:     tenant.TenantProfileID,
		RoomAssignmentRoomID:       room.RoomID,
		RoomAssignmentMoveInDate:   in.MoveIn,
		RoomAssignmentLeaseEndDate: in.LeaseEnd,
		RoomAssignmentIsCurrent:    true,
		RoomAssignmentMonthlyRent:  rent,
		RoomAssignmentNotes:        in.Notes,
	}
	if err := tx.Create(a).Error; err != nil {
		if apperror.IsUniqueViolation(err) {
			return nil, apperror.Conflict("Kamar atau penyewa sudah punya penempatan aktif").WithCode(apperror.CodeRoomOccupied)
		}
		return nil, apperror.FromDB(err, "Gagal menyimpan penempatan")
	}

	res := tx.Model(&roomModel.RoomModel{}).
		Where("room_id = ? AND room_status = ?", room.RoomID, roomModel.RoomStatusAvailable).
		Update("room_status", roomModel.RoomStatusOccupied)
	if res.Error != nil {
		return nil, apperror.Internal("Gagal mengubah status kamar", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.Conflict("Kamar " + room.RoomNumber + " sudah tidak tersedia").WithCode(apperror.CodeRoomNotAvailable)
	}

	room.RoomStatus = roomModel.RoomStatusOccupied
	a.Tenant = tenant
	a.Room = room
	return a, nil
}

// endTx menutup penempatan dan mengembalikan kamar ke available.
func endTx(tx *gorm.DB, a *model.RoomAssignmentModel, moveOut time.Time) error {
	if !a.RoomAssignmentIsCurrent {
		return apperror.Conflict("Penempatan " + a.RoomAssignmentCode + " sudah berakhir")
	}
	if moveOut.Before(a.RoomAssignmentMoveInDate) {
		return apperror.ErrInvalidDate.Withf("Tanggal keluar tidak boleh sebelum tanggal masuk (%s)", dbtime.FormatDate(a.RoomAssignmentMoveInDate))
	}
	res := tx.Model(&model.RoomAssignmentModel{}).
		Where("room_assignment_id = ? AND room_assignment_is_current = ?", a.RoomAssignmentID, true).
		Updates(map[string]any{
			"room_assignment_is_current":    false,
			"room_assignment_move_out_date": moveOut,
		})
	if res.Error != nil {
		return apperror.Internal("Gagal mengakhiri penempatan", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("Penempatan " + a.RoomAssignmentCode + " sudah berakhir")
	}
	if err := tx.Model(&roomModel.RoomModel{}).
		Where("room_id = ? AND room_status = ?", a.RoomAssignmentRoomID, roomModel.RoomStatusOccupied).
		Update("room_status", roomModel.RoomStatusAvailable).Error; err != nil {
		return apperror.Internal("Gagal mengubah status kamar", err)
	}
	a.RoomAssignmentIsCurrent = false
	a.RoomAssignmentMoveOutDate = &moveOut
	return nil
}

func findAssignment(db *gorm.DB, id uuid.UUID) (*model.RoomAssignmentModel, error) {
	var a model.RoomAssignmentModel
	if err := db.Preload("Tenant.User").Preload("Room").
		First(&a, "room_assignment_id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Penempatan tidak ditemukan")
	}
	return &a, nil
}

func (s *AssignmentService) AssignRoom(ctx context.Context, actor helperAuth.Actor, req dto.AssignRoomRequest) (*dto.AssignmentResponse, error) {
	if err := requireAdmin(actor, "penempatan kamar"); err != nil {
		return nil, err
	}
	in, err := parseAssign(req)
	if err != nil {
		return nil, err
	}

	var a *model.RoomAssignmentModel
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		a, err = assignTx(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("room assigned",
		zap.String("assignment", a.RoomAssignmentCode),
		zap.String("tenant_id", a.RoomAssignmentTenantID.String()),
		zap.String("room", a.Room.RoomNumber),
	)
	out := dto.FromModel(a, s.today())
	return &out, nil
}

func (s *AssignmentService) EndAssignment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.EndAssignmentRequest) (*dto.AssignmentResponse, error) {
	if err := requireAdmin(actor, "akhiri penempatan"); err != nil {
		return nil, err
	}
	moveOut := s.today()
	if d, err := dbtime.ParseDatePtr(req.MoveOutDate); err != nil {
		return nil, apperror.ErrInvalidDate.Withf("Format move_out_date harus YYYY-MM-DD")
	} else if d != nil {
		moveOut = *d
	}

	var a *model.RoomAssignmentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if a, err = findAssignment(tx, id); err != nil {
			return err
		}
		return endTx(tx, a, moveOut)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("assignment ended", zap.String("assignment", a.RoomAssignmentCode), zap.String("move_out", dbtime.FormatDate(moveOut)))
	out := dto.FromModel(a, s.today())
	return &out, nil
}

// ChangeRoom: akhiri penempatan aktif lalu tempatkan di kamar baru, dalam satu transaksi.
func (s *AssignmentService) ChangeRoom(ctx context.Context, actor helperAuth.Actor, tenantID uuid.UUID, req dto.ChangeRoomRequest) (*dto.AssignmentResponse, error) {
	if err := requireAdmin(actor, "pindah kamar"); err != nil {
		return nil, err
	}
	date := s.today()
	if d, err := dbtime.ParseDatePtr(req.MoveInDate); err != nil {
		return nil, apperror.ErrInvalidDate.Withf("Format move_in_date harus YYYY-MM-DD")
	} else if d != nil {
		date = *d
	}

	var (
		prev *model.RoomAssignmentModel
		next *model.RoomAssignmentModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		prev, err = findCurrent(tx, "room_assignment_tenant_id", tenantID)
		if err != nil {
			return apperror.Internal("Gagal mengambil penempatan aktif", err)
		}
		if prev == nil {
			return apperror.PreconditionFailed("Penyewa tidak sedang menempati kamar")
		}
		if prev.RoomAssignmentRoomID == req.NewRoomID {
			return apperror.InvalidInput("Kamar baru sama dengan kamar saat ini")
		}
		if err := endTx(tx, prev, date); err != nil {
			return err
		}
		next, err = assignTx(tx, assignInput{
			TenantID:    tenantID,
			RoomID:      req.NewRoomID,
			MoveIn:      date,
			MonthlyRent: req.MonthlyRent,
			Notes:       req.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("room changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("from", prev.RoomAssignmentCode),
		zap.String("to", next.RoomAssignmentCode),
	)
	out := dto.FromModel(next, s.today())
	return &out, nil
}

// ensureOwner: tenant hanya boleh melihat penempatan miliknya sendiri.
func ensureOwner(db *gorm.DB, actor helperAuth.Actor, tenantID uuid.UUID) error {
	if actor.IsPrivileged() {
		return nil
	}
	p, err := profileService.FindByUserID(db, actor.UserID)
	if err != nil || p.TenantProfileID != tenantID {
		return apperror.Forbidden("Anda tidak berhak mengakses penempatan ini")
	}
	return nil
}

func (s *AssignmentService) GetAssignment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.AssignmentResponse, error) {
	db := s.DB.WithContext(ctx)
	a, err := findAssignment(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(db, actor, a.RoomAssignmentTenantID); err != nil {
		return nil, err
	}
	out := dto.FromModel(a, s.today())
	return &out, nil
}

var assignmentSort = map[string]string{
	"move_in_date": "room_assignment_move_in_date",
	"created_at":   "room_assignment_created_at",
	"code":         "room_assignment_code",
}

func (s *AssignmentService) ListAssignments(ctx context.Context, actor helperAuth.Actor, q dto.ListAssignmentsQuery, p helper.Params) ([]dto.AssignmentResponse, int64, error) {
	db := s.DB.WithContext(ctx)
	tx := db.Model(&model.RoomAssignmentModel{})

	if !actor.IsPrivileged() {
		prof, err := profileService.FindByUserID(db, actor.UserID)
		if err != nil {
			return nil, 0, apperror.Forbidden("Hanya penyewa terdaftar yang bisa melihat penempatan")
		}
		tx = tx.Where("room_assignment_tenant_id = ?", prof.TenantProfileID)
	} else if q.TenantID != nil {
		tx = tx.Where("room_assignment_tenant_id = ?", *q.TenantID)
	}
	if q.RoomID != nil {
		tx = tx.Where("room_assignment_room_id = ?", *q.RoomID)
	}
	if q.IsCurrent != nil {
		tx = tx.Where("room_assignment_is_current = ?", *q.IsCurrent)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung penempatan", err)
	}
	order, err := p.OrderClause(assignmentSort, "move_in_date")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}
	var rows []model.RoomAssignmentModel
	if err := tx.Preload("Tenant.User").Preload("Room").
		Order(order).Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil penempatan", err)
	}
	return dto.FromModelList(rows, s.today()), total, nil
}

// CurrentByRoom: nil kalau kamar sedang kosong.
func (s *AssignmentService) CurrentByRoom(ctx context.Context, roomID uuid.UUID) (*dto.AssignmentResponse, error) {
	db := s.DB.WithContext(ctx)
	if _, err := roomService.FindRoom(db, roomID); err != nil {
		return nil, err
	}
	var rows []model.RoomAssignmentModel
	if err := db.Preload("Tenant.User").Preload("Room").
		Where("room_assignment_room_id = ? AND room_assignment_is_current = ?", roomID, true).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil penempatan kamar", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := dto.FromModel(&rows[0], s.today())
	return &out, nil
}

// TenantHistory: semua penempatan penyewa, terbaru dulu.
func (s *AssignmentService) TenantHistory(ctx context.Context, actor helperAuth.Actor, tenantID uuid.UUID) ([]dto.AssignmentResponse, error) {
	db := s.DB.WithContext(ctx)
	if _, err := profileService.FindByID(db, tenantID); err != nil {
		return nil, err
	}
	if err := ensureOwner(db, actor, tenantID); err != nil {
		return nil, err
	}
	var rows []model.RoomAssignmentModel
	if err := db.Preload("Room").
		Where("room_assignment_tenant_id = ?", tenantID).
		Order("room_assignment_move_in_date DESC, room_assignment_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil riwayat penempatan", err)
	}
	return dto.FromModelList(rows, s.today()), nil
}
