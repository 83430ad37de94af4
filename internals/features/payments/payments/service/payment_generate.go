package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
	"kosan_backend/internals/helpers/sequence"
)

const (
	reasonExists = "Tagihan periode ini sudah ada"
	reasonRace   = "Tagihan dibuat bersamaan oleh proses lain"
)

// GeneratePeriod membuat tagihan pending untuk setiap penempatan aktif.
// Idempoten: penyewa yang sudah punya tagihan periode itu dilewati.
func (s *PaymentService) GeneratePeriod(ctx context.Context, actor helperAuth.Actor, req dto.GeneratePeriodRequest) (*dto.GeneratePeriodResult, error) {
	if err := requireAdmin(actor, "generate tagihan"); err != nil {
		return nil, err
	}
	if err := validPeriod(req.Month, req.Year); err != nil {
		return nil, err
	}
	dueDay := s.Billing.DueDay
	if req.DueDay != nil {
		dueDay = *req.DueDay
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, apperror.InvalidInput("Tanggal jatuh tempo harus antara 1 dan 31")
	}
	due := dbtime.ClampedDate(req.Year, time.Month(req.Month), dueDay)
	today := s.today()

	res := &dto.GeneratePeriodResult{
		Month:       req.Month,
		Year:        req.Year,
		PeriodLabel: dbtime.PeriodLabel(req.Month, req.Year),
		DryRun:      req.DryRun,
		Created:     []dto.PaymentResponse{},
		Skipped:     []dto.SkippedTenant{},
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignments []assignmentModel.RoomAssignmentModel
		if err := tx.Preload("Tenant.User").Preload("Room").
			Where("room_assignment_is_current = ?", true).
			Order("room_assignment_created_at ASC").
			Find(&assignments).Error; err != nil {
			return apperror.Internal("Gagal mengambil penempatan aktif", err)
		}

		var existing []model.PaymentModel
		if err := tx.Select("payment_tenant_id").
			Where("payment_period_month = ? AND payment_period_year = ?", req.Month, req.Year).
			Find(&existing).Error; err != nil {
			return apperror.Internal("Gagal memeriksa tagihan periode", err)
		}
		billed := make(map[string]bool, len(existing))
		for _, e := range existing {
			billed[e.PaymentTenantID.String()] = true
		}

		for i := range assignments {
			a := &assignments[i]
			name := ""
			if a.Tenant != nil {
				name = a.Tenant.Name()
			}
			if billed[a.RoomAssignmentTenantID.String()] {
				res.Skipped = append(res.Skipped, dto.SkippedTenant{TenantID: a.RoomAssignmentTenantID, TenantName: name, Reason: reasonExists})
				continue
			}

			assignmentID := a.RoomAssignmentID
			p := &model.PaymentModel{
				PaymentTenantID:          a.RoomAssignmentTenantID,
				PaymentAssignmentID:      &assignmentID,
				PaymentPeriodMonth:       req.Month,
				PaymentPeriodYear:        req.Year,
				PaymentAmount:            a.RoomAssignmentMonthlyRent,
				PaymentDueDate:           due,
				PaymentStatus:            model.PaymentStatusPending,
				PaymentBankName:          s.Billing.BankName,
				PaymentBankAccountName:   s.Billing.BankAccountName,
				PaymentBankAccountNumber: nonEmpty(s.Billing.BankAccountNumber),
			}

			if !req.DryRun {
				code, err := sequence.NextCode(tx, sequence.Payment)
				if err != nil {
					return apperror.Internal("Gagal membuat kode pembayaran", err)
				}
				p.PaymentCode = code
				ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
				if ins.Error != nil {
					return apperror.FromDB(ins.Error, "Gagal menyimpan tagihan")
				}
				if ins.RowsAffected == 0 {
					res.Skipped = append(res.Skipped, dto.SkippedTenant{TenantID: a.RoomAssignmentTenantID, TenantName: name, Reason: reasonRace})
					continue
				}
			}

			p.Tenant = a.Tenant
			p.Assignment = a
			res.Created = append(res.Created, dto.FromModel(p, today))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.CreatedCount = len(res.Created)
	res.SkippedCount = len(res.Skipped)
	s.Log.Info("payments generated",
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("created", res.CreatedCount),
		zap.Int("skipped", res.SkippedCount),
	)
	return res, nil
}
