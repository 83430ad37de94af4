// Package commands berisi subcommand kosanctl. Setiap flag juga bisa diisi lewat env
// KOSANCTL_<NAMA_FLAG> (mis. KOSANCTL_DUE_DAY).
package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/configs"
)

// Env: logger + koneksi DB (dibuka saat pertama dipakai) untuk semua subcommand.
type Env struct {
	Log *zap.Logger
	v   *viper.Viper

	// OpenDB bisa diganti di test.
	OpenDB  func(log *zap.Logger) (*gorm.DB, error)
	db      *gorm.DB
	closeDB bool
}

func (e *Env) DB() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := e.OpenDB(e.Log)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *Env) Close() {
	if e.db == nil || !e.closeDB {
		return
	}
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func defaultOpenDB(log *zap.Logger) (*gorm.DB, error) {
	return configs.InitSeederDB(log), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KOSANCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&Env{OpenDB: defaultOpenDB, v: newViper(), closeDB: true})
}

func newRootCommand(env *Env) *cobra.Command {
	if env.v == nil {
		env.v = newViper()
	}
	root := &cobra.Command{
		Use:           "kosanctl",
		Short:         "Operator CLI untuk kosan backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if env.Log != nil {
				return nil
			}
			configs.LoadEnv()
			l, err := configs.NewLogger(configs.AppEnv, configs.LogLevel)
			if err != nil {
				return err
			}
			env.Log = l
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			env.Close()
			if env.Log != nil {
				_ = env.Log.Sync()
			}
		},
	}

	root.AddCommand(
		newMigrateCommand(env),
		newSeedCommand(env),
		newGeneratePaymentsCommand(env),
		newDeactivateExpiredTokensCommand(env),
		newBackfillProfilesCommand(env),
	)
	return root
}
