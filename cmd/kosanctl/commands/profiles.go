package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	profileService "kosan_backend/internals/features/tenants/profiles/service"
	helperAuth "kosan_backend/internals/helpers/auth"
)

// backfill-profiles: user tenant lama yang belum punya tenant_profiles.
func newBackfillProfilesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-profiles",
		Short: "Buat profil penyewa untuk user tenant yang belum punya",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			created, err := profileService.NewProfileService(db, env.Log).BackfillMissing(cmd.Context(), helperAuth.SystemActor())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range created {
				fmt.Fprintf(out, "  + %s <%s>\n", p.User.FullName, p.User.Email)
			}
			fmt.Fprintf(out, "%d profil penyewa dibuat\n", len(created))
			return nil
		},
	}
}
