package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	database "kosan_backend/internals/databases"
)

func newMigrateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "AutoMigrate semua tabel + index parsial penempatan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db.WithContext(cmd.Context())); err != nil {
				return err
			}
			env.Log.Info("migrate selesai", zap.Int("models", len(database.Models())))
			return nil
		},
	}
}
