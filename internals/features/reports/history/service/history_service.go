package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	complaintModel "kosan_backend/internals/features/complaints/complaints/model"
	paymentModel "kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/features/reports/history/dto"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	userModel "kosan_backend/internals/features/users/user/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

type HistoryService struct {
	DB  *gorm.DB
	Log *zap.Logger
	Now func() time.Time
}

func NewHistoryService(db *gorm.DB, log *zap.Logger) *HistoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryService{DB: db, Log: log, Now: time.Now}
}

// TenantHistory: riwayat 12 bulan terakhir. userID nil = diri sendiri;
// melihat penyewa lain hanya untuk admin.
func (s *HistoryService) TenantHistory(ctx context.Context, actor helperAuth.Actor, userID *uuid.UUID) (*dto.TenantHistoryResponse, error) {
	target := actor.UserID
	if userID != nil && *userID != actor.UserID {
		if !actor.IsPrivileged() {
			return nil, apperror.Forbidden("Tidak memiliki izin melihat riwayat penyewa lain")
		}
		target = *userID
	}
	if target == uuid.Nil {
		return nil, apperror.InvalidInput("User wajib diisi")
	}

	db := s.DB.WithContext(ctx)
	profile, err := profileService.FindByUserID(db, target)
	if err != nil {
		if apperror.KindOf(err) != apperror.KindNotFound {
			return nil, err
		}
		var n int64
		if err := db.Model(&userModel.UserModel{}).Where("id = ?", target).Count(&n).Error; err != nil {
			return nil, apperror.Internal("Gagal membaca pengguna", err)
		}
		if n == 0 {
			return nil, apperror.NotFound("Pengguna tidak ditemukan")
		}
		return nil, apperror.InvalidInput("Pengguna bukan penghuni")
	}

	now := s.Now()
	today := dbtime.Today(now)
	from := today.AddDate(0, -12, 0)

	out := &dto.TenantHistoryResponse{
		UserID:   target,
		UserName: profile.Name(),
		From:     dbtime.FormatDate(from),
		To:       dbtime.FormatDate(today),
	}

	var payments []paymentModel.PaymentModel
	if err := db.Where("payment_tenant_id = ? AND payment_due_date BETWEEN ? AND ?", profile.TenantProfileID, from, today).
		Order("payment_period_year DESC, payment_period_month DESC").
		Find(&payments).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil riwayat pembayaran", err)
	}
	out.PaymentHistory, out.PaymentSummary = paymentHistory(payments, today)

	// batas bawah = tengah malam WIB pada tanggal from
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, dbtime.Location())
	var complaints []complaintModel.ComplaintModel
	if err := db.Select("complaint_id", "complaint_category", "complaint_status", "complaint_created_at").
		Where("complaint_tenant_id = ? AND complaint_created_at >= ? AND complaint_created_at <= ?", profile.TenantProfileID, start.UTC(), now.UTC()).
		Order("complaint_created_at DESC").
		Find(&complaints).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil riwayat keluhan", err)
	}
	out.ComplaintHistory, out.ComplaintSummary = complaintHistory(complaints)
	return out, nil
}

func paymentHistory(rows []paymentModel.PaymentModel, today time.Time) ([]dto.PaymentHistoryItem, dto.PaymentSummary) {
	items := make([]dto.PaymentHistoryItem, 0, len(rows))
	var sum dto.PaymentSummary
	for i := range rows {
		p := &rows[i]
		late := p.IsLate(today)
		switch p.PaymentStatus {
		case paymentModel.PaymentStatusPaid:
			if late {
				sum.Late++
			} else {
				sum.OnTime++
			}
		case paymentModel.PaymentStatusPending:
			sum.Unpaid++
		}
		items = append(items, dto.PaymentHistoryItem{
			PaymentID:   p.PaymentID,
			Month:       p.PaymentPeriodMonth,
			Year:        p.PaymentPeriodYear,
			MonthName:   dbtime.MonthName(time.Month(p.PaymentPeriodMonth)),
			PeriodLabel: dbtime.PeriodLabel(p.PaymentPeriodMonth, p.PaymentPeriodYear),
			Amount:      p.PaymentAmount,
			Status:      p.PaymentStatus,
			DueDate:     dbtime.FormatDate(p.PaymentDueDate),
			PaymentDate: dbtime.FormatDatePtr(p.PaymentPaymentDate),
			IsLate:      late,
		})
	}
	sum.Total = len(items)
	return items, sum
}

// complaintHistory mengelompokkan per bulan (WIB), terbaru dulu.
func complaintHistory(rows []complaintModel.ComplaintModel) ([]dto.ComplaintMonth, dto.ComplaintSummary) {
	type key struct{ y, m int }
	byMonth := map[key]*dto.ComplaintMonth{}
	cats := map[key]map[string]struct{}{}
	sum := dto.ComplaintSummary{ByCategory: map[string]int{}}

	for _, c := range rows {
		local := c.ComplaintCreatedAt.In(dbtime.Location())
		k := key{local.Year(), int(local.Month())}
		e, ok := byMonth[k]
		if !ok {
			e = &dto.ComplaintMonth{
				Month:     k.m,
				Year:      k.y,
				MonthName: dbtime.MonthName(local.Month()),
				Statuses:  map[string]int{},
			}
			byMonth[k] = e
			cats[k] = map[string]struct{}{}
		}
		e.Count++
		e.Statuses[string(c.ComplaintStatus)]++
		cats[k][string(c.ComplaintCategory)] = struct{}{}
		sum.ByCategory[string(c.ComplaintCategory)]++
		sum.Total++
	}

	out := make([]dto.ComplaintMonth, 0, len(byMonth))
	for k, e := range byMonth {
		e.Categories = make([]string, 0, len(cats[k]))
		for c := range cats[k] {
			e.Categories = append(e.Categories, c)
		}
		sort.Strings(e.Categories)
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, sum
}
