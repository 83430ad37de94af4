package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/features/users/auth/service"
)

// DefaultBlacklistCleanupSpec: tiap hari jam 03:00.
const DefaultBlacklistCleanupSpec = "0 3 * * *"

// RunBlacklistCleanup menghapus token blacklist yang exp-nya sudah lewat lebih dari
// TOKEN_BLACKLIST_TTL_DAYS hari (default 0 = langsung setelah exp).
func RunBlacklistCleanup(ctx context.Context, svc *service.AuthService, now time.Time) (int64, error) {
	ttlDays := configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 0)
	return svc.CleanupBlacklist(ctx, now.Add(-time.Duration(ttlDays)*24*time.Hour))
}

func RegisterBlacklistCleanup(c *cron.Cron, svc *service.AuthService, log *zap.Logger) error {
	_, err := c.AddFunc(DefaultBlacklistCleanupSpec, func() {
		n, err := RunBlacklistCleanup(context.Background(), svc, time.Now())
		if err != nil {
			log.Error("[CLEANUP] gagal hapus token_blacklist", zap.Error(err))
			return
		}
		log.Info("[CLEANUP] token_blacklist dibersihkan", zap.Int64("deleted", n))
	})
	return err
}
