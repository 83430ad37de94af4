package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/constants"
	complaintService "kosan_backend/internals/features/complaints/complaints/service"
	paymentService "kosan_backend/internals/features/payments/payments/service"
	"kosan_backend/internals/features/reports/dashboard/dto"
	roomModel "kosan_backend/internals/features/rooms/rooms/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileModel "kosan_backend/internals/features/tenants/profiles/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

type DashboardService struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Now      func() time.Time
	Payments *paymentService.PaymentService
}

func NewDashboardService(db *gorm.DB, log *zap.Logger) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &DashboardService{DB: db, Log: log, Now: time.Now}
	s.Payments = paymentService.NewPaymentService(db, log, configs.Billing{}, nil)
	// statistik pembayaran memakai jam yang sama dengan dashboard
	s.Payments.Now = func() time.Time { return s.Now() }
	return s
}

func (s *DashboardService) rooms(db *gorm.DB) (dto.RoomSummary, error) {
	var rows []struct {
		Status string
		N      int64
	}
	if err := db.Model(&roomModel.RoomModel{}).
		Select("room_status AS status, COUNT(*) AS n").
		Group("room_status").
		Scan(&rows).Error; err != nil {
		return dto.RoomSummary{}, err
	}
	var out dto.RoomSummary
	for _, r := range rows {
		out.Total += r.N
		switch roomModel.RoomStatus(r.Status) {
		case roomModel.RoomStatusAvailable:
			out.Available = r.N
		case roomModel.RoomStatusOccupied:
			out.Occupied = r.N
		case roomModel.RoomStatusMaintenance:
			out.Maintenance = r.N
		}
	}
	if out.Total > 0 {
		out.OccupancyRate = math.Round(float64(out.Occupied)/float64(out.Total)*1000) / 10
	}
	return out, nil
}

// Dashboard (admin): ringkasan kamar, penyewa, tagihan bulan berjalan, dan keluhan terbuka.
func (s *DashboardService) Dashboard(ctx context.Context, actor helperAuth.Actor) (*dto.DashboardResponse, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("dashboard"))
	}
	db := s.DB.WithContext(ctx)
	now := s.Now()
	today := dbtime.Today(now)

	out := &dto.DashboardResponse{GeneratedAt: now}

	rooms, err := s.rooms(db)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung kamar", err)
	}
	out.Rooms = rooms

	if err := db.Model(&profileModel.TenantProfileModel{}).
		Where("tenant_profile_is_active = ?", true).
		Count(&out.ActiveTenants).Error; err != nil {
		return nil, apperror.Internal("Gagal menghitung penyewa", err)
	}
	if err := db.Model(&assignmentModel.RoomAssignmentModel{}).
		Where("room_assignment_is_current = ?", true).
		Count(&out.CurrentAssignments).Error; err != nil {
		return nil, apperror.Internal("Gagal menghitung penempatan", err)
	}

	stats, err := s.Payments.Statistics(ctx, actor)
	if err != nil {
		return nil, err
	}
	out.Payments = dto.PaymentSummary{
		Month:         int(today.Month()),
		Year:          today.Year(),
		PeriodLabel:   dbtime.PeriodLabel(int(today.Month()), today.Year()),
		PaidCount:     stats.ThisMonthPaid,
		PendingCount:  stats.ThisMonthPending,
		Revenue:       stats.ThisMonthRevenue,
		OverdueCount:  stats.OverdueCount,
		OverdueAmount: stats.OverdueAmount,
	}

	byPriority, err := complaintService.OpenCountsByPriority(db)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung keluhan", err)
	}
	out.OpenComplaints.ByPriority = byPriority
	for _, n := range byPriority {
		out.OpenComplaints.Open += n
	}
	return out, nil
}
