package commands

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"kosan_backend/internals/seeds"
)

const dataFlag = "data"

var seedFlags = map[string]cobraflags.Flag{
	dataFlag: &cobraflags.StringFlag{
		Name:  dataFlag,
		Value: seeds.DefaultDataFile,
		Usage: "File JSON data seed",
	},
}

func newSeedCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Isi data awal (admin, kamar, penyewa, penempatan, keluhan)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			return seeds.RunAllSeeds(cmd.Context(), db, env.Log, seedFlags[dataFlag].GetString())
		},
	}
	cobraflags.RegisterMap(cmd, seedFlags)
	return cmd
}
