package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kosan_backend/internals/configs"
	authScheduler "kosan_backend/internals/features/users/auth/scheduler"
	authService "kosan_backend/internals/features/users/auth/service"
)

func newDeactivateExpiredTokensCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate-expired-tokens",
		Short: "Hapus token blacklist yang sudah kedaluwarsa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			svc := authService.NewAuthService(db, env.Log, authService.NewTokenService(configs.JWTSecret, time.Hour))
			n, err := authScheduler.RunBlacklistCleanup(cmd.Context(), svc, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d token kedaluwarsa dihapus\n", n)
			return nil
		},
	}
}
