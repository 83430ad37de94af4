package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

type countSum struct {
	N     int64
	Total decimal.Decimal
}

func aggregate(tx *gorm.DB) (countSum, error) {
	var out countSum
	err := tx.Select("COUNT(*) AS n, COALESCE(SUM(payment_amount), 0) AS total").Scan(&out).Error
	return out, err
}

// Statistics: ringkasan status + pendapatan 12 bulan terakhir (terlama dulu).
// pending di sini berarti belum lewat jatuh tempo; sisanya dihitung overdue.
func (s *PaymentService) Statistics(ctx context.Context, actor helperAuth.Actor) (*dto.PaymentStatistics, error) {
	if !actor.IsPrivileged() {
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("statistik pembayaran"))
	}
	today := s.today()
	db := s.DB.WithContext(ctx)
	base := func() *gorm.DB { return db.Model(&model.PaymentModel{}) }

	all, err := aggregate(base())
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}
	paid, err := aggregate(base().Where("payment_status = ?", model.PaymentStatusPaid))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}
	pending, err := aggregate(base().Where("payment_status = ? AND payment_due_date >= ?", model.PaymentStatusPending, today))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}
	overdue, err := aggregate(base().Where("payment_status = ? AND payment_due_date < ?", model.PaymentStatusPending, today))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}
	cancelled, err := aggregate(base().Where("payment_status = ?", model.PaymentStatusCancelled))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}

	y, m := today.Year(), today.Month()
	thisPaid, err := aggregate(base().Where("payment_status = ? AND payment_period_year = ? AND payment_period_month = ?", model.PaymentStatusPaid, y, int(m)))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}
	thisPending, err := aggregate(base().Where("payment_status = ? AND payment_period_year = ? AND payment_period_month = ?", model.PaymentStatusPending, y, int(m)))
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung statistik", err)
	}

	revenue, err := s.monthlyRevenue(db, today)
	if err != nil {
		return nil, apperror.Internal("Gagal menghitung pendapatan bulanan", err)
	}

	return &dto.PaymentStatistics{
		TotalPayments:    all.N,
		PaidCount:        paid.N,
		PendingCount:     pending.N,
		OverdueCount:     overdue.N,
		CancelledCount:   cancelled.N,
		TotalAmount:      all.Total,
		PaidAmount:       paid.Total,
		PendingAmount:    pending.Total,
		OverdueAmount:    overdue.Total,
		MonthlyRevenue:   revenue,
		ThisMonthPaid:    thisPaid.N,
		ThisMonthPending: thisPending.N,
		ThisMonthRevenue: thisPaid.Total,
	}, nil
}

// monthlyRevenue: tepat 12 bulan berurutan yang berakhir di bulan berjalan, bulan kosong bernilai 0.
func (s *PaymentService) monthlyRevenue(db *gorm.DB, today time.Time) ([]dto.MonthlyRevenue, error) {
	startY, startM := dbtime.AddMonths(today.Year(), today.Month(), -11)
	from := startY*100 + int(startM)
	to := today.Year()*100 + int(today.Month())

	var rows []struct {
		Year  int
		Month int
		Total decimal.Decimal
	}
	if err := db.Model(&model.PaymentModel{}).
		Select("payment_period_year AS year, payment_period_month AS month, COALESCE(SUM(payment_amount), 0) AS total").
		Where("payment_status = ?", model.PaymentStatusPaid).
		Where("payment_period_year * 100 + payment_period_month BETWEEN ? AND ?", from, to).
		Group("payment_period_year, payment_period_month").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	byPeriod := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		byPeriod[r.Year*100+r.Month] = r.Total
	}

	out := make([]dto.MonthlyRevenue, 0, 12)
	for i := 0; i < 12; i++ {
		yy, mm := dbtime.AddMonths(startY, startM, i)
		rev, ok := byPeriod[yy*100+int(mm)]
		if !ok {
			rev = decimal.Zero
		}
		out = append(out, dto.MonthlyRevenue{
			Year:      yy,
			Month:     int(mm),
			MonthName: dbtime.MonthName(mm),
			Revenue:   rev,
		})
	}
	return out, nil
}
