// Package scheduler menjalankan job tagihan bulanan dengan robfig/cron.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/service"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

// DefaultBillingSpec: tanggal 1 tiap bulan jam 01:00 WIB.
const DefaultBillingSpec = "0 1 1 * *"

// cronLogger meneruskan log internal cron ke zap.
type cronLogger struct{ l *zap.SugaredLogger }

func (c cronLogger) Info(msg string, kv ...interface{}) { c.l.Debugw(msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.l.Errorw(msg, append(kv, "error", err)...)
}

// New membuat cron berzona Asia/Jakarta. Job yang masih berjalan tidak ditumpuk
// dan panic di dalam job dipulihkan.
func New(log *zap.Logger) *cron.Cron {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{l: log.Sugar()}
	return cron.New(
		cron.WithLocation(dbtime.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// RunMonthlyBilling: GeneratePeriod untuk bulan berjalan (zona Asia/Jakarta) sebagai actor sistem.
func RunMonthlyBilling(ctx context.Context, svc *service.PaymentService, now time.Time) (*dto.GeneratePeriodResult, error) {
	today := dbtime.Today(now)
	due := svc.Billing.DueDay
	return svc.GeneratePeriod(ctx, helperAuth.SystemActor(), dto.GeneratePeriodRequest{
		Month:  int(today.Month()),
		Year:   today.Year(),
		DueDay: &due,
	})
}

// RegisterMonthlyBilling: spec kosong → job tidak didaftarkan.
func RegisterMonthlyBilling(c *cron.Cron, spec string, svc *service.PaymentService, log *zap.Logger) error {
	if spec == "" {
		log.Info("[BILLING] cron dinonaktifkan (PAYMENT_CRON kosong)")
		return nil
	}
	_, err := c.AddFunc(spec, func() {
		res, err := RunMonthlyBilling(context.Background(), svc, time.Now())
		if err != nil {
			log.Error("[BILLING] generate tagihan gagal", zap.Error(err))
			return
		}
		log.Info("[BILLING] tagihan bulanan dibuat",
			zap.Int("month", res.Month),
			zap.Int("year", res.Year),
			zap.Int("created", res.CreatedCount),
			zap.Int("skipped", res.SkippedCount),
		)
	})
	return err
}
