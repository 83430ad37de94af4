package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/features/payments/payments/dto"
	paymentService "kosan_backend/internals/features/payments/payments/service"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
)

func newGeneratePaymentsCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-payments",
		Short: "Buat tagihan bulanan untuk semua penempatan aktif",
		Long: `Buat tagihan pending periode --month/--year (default: bulan berjalan WIB)
untuk setiap penempatan aktif. Penyewa yang sudah punya tagihan periode itu dilewati,
jadi perintah ini aman dijalankan ulang. --dry-run hanya menampilkan rencana.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := env.DB()
			if err != nil {
				return err
			}
			today := dbtime.Today(time.Now())
			month := env.v.GetInt("month")
			if month == 0 {
				month = int(today.Month())
			}
			year := env.v.GetInt("year")
			if year == 0 {
				year = today.Year()
			}
			req := dto.GeneratePeriodRequest{
				Month:  month,
				Year:   year,
				DryRun: env.v.GetBool("dry-run"),
			}
			if d := env.v.GetInt("due-day"); d != 0 {
				req.DueDay = &d
			}

			svc := paymentService.NewPaymentService(db, env.Log, configs.LoadBilling(), nil)
			res, err := svc.GeneratePeriod(cmd.Context(), helperAuth.SystemActor(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			mode := "dibuat"
			if res.DryRun {
				mode = "akan dibuat (dry-run)"
			}
			fmt.Fprintf(out, "Periode %s: %d tagihan %s, %d dilewati\n", res.PeriodLabel, res.CreatedCount, mode, res.SkippedCount)
			for _, p := range res.Created {
				fmt.Fprintf(out, "  + %-10s %-25s %s jatuh tempo %s\n", p.PaymentCode, p.TenantName, p.Amount.StringFixed(2), p.DueDate)
			}
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "  - %-25s %s\n", s.TenantName, s.Reason)
			}
			env.Log.Info("generate-payments",
				zap.Int("month", res.Month),
				zap.Int("year", res.Year),
				zap.Bool("dry_run", res.DryRun),
				zap.Int("created", res.CreatedCount),
				zap.Int("skipped", res.SkippedCount),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("month", 0, "Bulan periode 1-12 (default bulan berjalan)")
	f.Int("year", 0, "Tahun periode (default tahun berjalan)")
	f.Int("due-day", 0, "Tanggal jatuh tempo 1-31 (default PAYMENT_DUE_DAY)")
	f.Bool("dry-run", false, "Tampilkan rencana tanpa menyimpan")
	_ = env.v.BindPFlags(f)
	return cmd
}
