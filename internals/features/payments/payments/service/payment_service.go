package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/model"
	assignmentModel "kosan_backend/internals/features/tenants/assignments/model"
	profileService "kosan_backend/internals/features/tenants/profiles/service"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/apperror"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/dbtime"
	"kosan_backend/internals/helpers/sequence"
	"kosan_backend/internals/helpers/storage"
)

const proofDir = "payments/proofs"

type PaymentService struct {
	DB      *gorm.DB
	Log     *zap.Logger
	Now     func() time.Time
	Billing configs.Billing
	Files   storage.FileStore
}

func NewPaymentService(db *gorm.DB, log *zap.Logger, billing configs.Billing, files storage.FileStore) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	if billing.DueDay < 1 || billing.DueDay > 31 {
		billing.DueDay = 5
	}
	if billing.BankName == "" {
		billing.BankName = "Bank BCA"
	}
	return &PaymentService{DB: db, Log: log, Now: time.Now, Billing: billing, Files: files}
}

func (s *PaymentService) today() time.Time { return dbtime.Today(s.Now()) }

func requireAdmin(actor helperAuth.Actor, feature string) error {
	if actor.IsPrivileged() {
		return nil
	}
	return apperror.Forbidden(constants.RoleErrorAdmin(feature))
}

func validPeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperror.InvalidInput("Bulan harus antara 1 dan 12")
	}
	if year < 2000 || year > 2100 {
		return apperror.InvalidInput("Tahun harus antara 2000 dan 2100")
	}
	return nil
}

func duplicatePeriod(month, year int) error {
	return apperror.Conflict(fmt.Sprintf("Tagihan %s untuk penyewa ini sudah ada", dbtime.PeriodLabel(month, year))).
		WithCode(apperror.CodeDuplicatePeriod)
}

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.Preload("Tenant.User").Preload("Assignment.Room")
}

func FindPayment(db *gorm.DB, id uuid.UUID) (*model.PaymentModel, error) {
	var m model.PaymentModel
	if err := preloadAll(db).First(&m, "payment_id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, "Pembayaran tidak ditemukan")
	}
	return &m, nil
}

// ensureCanView: admin/system atau penyewa pemilik tagihan.
func ensureCanView(actor helperAuth.Actor, m *model.PaymentModel) error {
	if actor.IsPrivileged() {
		return nil
	}
	if m.Tenant != nil && m.Tenant.TenantProfileUserID == actor.UserID {
		return nil
	}
	return apperror.Forbidden("Anda tidak berhak mengakses pembayaran ini")
}

func currentAssignment(tx *gorm.DB, tenantID uuid.UUID) (*assignmentModel.RoomAssignmentModel, error) {
	var rows []assignmentModel.RoomAssignmentModel
	if err := tx.Where("room_assignment_tenant_id = ? AND room_assignment_is_current = ?", tenantID, true).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *PaymentService) respond(db *gorm.DB, id uuid.UUID) (*dto.PaymentResponse, error) {
	m, err := FindPayment(db, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromModel(m, s.today())
	return &out, nil
}

/* ===================== CREATE ===================== */

func (s *PaymentService) CreatePayment(ctx context.Context, actor helperAuth.Actor, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := requireAdmin(actor, "buat tagihan"); err != nil {
		return nil, err
	}
	if err := validPeriod(req.PeriodMonth, req.PeriodYear); err != nil {
		return nil, err
	}
	due := dbtime.ClampedDate(req.PeriodYear, time.Month(req.PeriodMonth), s.Billing.DueDay)
	if d, err := dbtime.ParseDatePtr(req.DueDate); err != nil {
		return nil, apperror.ErrInvalidDate.Withf("Format due_date harus YYYY-MM-DD")
	} else if d != nil {
		due = *d
	}

	db := s.DB.WithContext(ctx)
	var id uuid.UUID
	err := db.Transaction(func(tx *gorm.DB) error {
		tenant, err := profileService.FindByID(tx, req.TenantID)
		if err != nil {
			return err
		}
		if !tenant.TenantProfileIsActive {
			return apperror.InvalidInput("Penyewa tidak aktif")
		}

		cur, err := currentAssignment(tx, tenant.TenantProfileID)
		if err != nil {
			return apperror.Internal("Gagal mengambil penempatan penyewa", err)
		}
		assignmentID := req.AssignmentID
		if assignmentID == nil && cur != nil {
			assignmentID = &cur.RoomAssignmentID
		}
		var amount decimal.Decimal
		switch {
		case req.Amount != nil:
			amount = *req.Amount
		case cur != nil:
			amount = cur.RoomAssignmentMonthlyRent
		default:
			return apperror.InvalidInput("Nominal wajib diisi karena penyewa belum menempati kamar")
		}
		if !amount.IsPositive() {
			return apperror.InvalidInput("Nominal harus lebih dari 0")
		}

		code, err := sequence.NextCode(tx, sequence.Payment)
		if err != nil {
			return apperror.Internal("Gagal membuat kode pembayaran", err)
		}
		m := &model.PaymentModel{
			PaymentCode:              code,
			PaymentTenantID:          tenant.TenantProfileID,
			PaymentAssignmentID:      assignmentID,
			PaymentPeriodMonth:       req.PeriodMonth,
			PaymentPeriodYear:        req.PeriodYear,
			PaymentAmount:            amount,
			PaymentDueDate:           due,
			PaymentStatus:            model.PaymentStatusPending,
			PaymentBankName:          s.Billing.BankName,
			PaymentBankAccountName:   s.Billing.BankAccountName,
			PaymentBankAccountNumber: nonEmpty(s.Billing.BankAccountNumber),
			PaymentNotes:             req.Notes,
		}
		if req.BankName != nil {
			m.PaymentBankName = *req.BankName
		}
		if req.BankAccountName != nil {
			m.PaymentBankAccountName = *req.BankAccountName
		}
		if req.BankAccountNumber != nil {
			m.PaymentBankAccountNumber = req.BankAccountNumber
		}
		if err := tx.Create(m).Error; err != nil {
			if apperror.IsUniqueViolation(err) {
				return duplicatePeriod(req.PeriodMonth, req.PeriodYear)
			}
			return apperror.FromDB(err, "Gagal menyimpan pembayaran")
		}
		id = m.PaymentID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("payment created",
		zap.String("payment_id", id.String()),
		zap.String("tenant_id", req.TenantID.String()),
		zap.Int("month", req.PeriodMonth),
		zap.Int("year", req.PeriodYear),
	)
	return s.respond(db, id)
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

/* ===================== STATUS ===================== */

// MarkPaid: hanya dari pending. Update bersyarat status='pending' supaya dua panggilan
// bersamaan tidak sama-sama berhasil.
func (s *PaymentService) MarkPaid(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.MarkPaidRequest) (*dto.PaymentResponse, error) {
	if err := requireAdmin(actor, "konfirmasi pembayaran"); err != nil {
		return nil, err
	}
	today := s.today()
	payDate := today
	if d, err := dbtime.ParseDatePtr(req.PaymentDate); err != nil {
		return nil, apperror.ErrInvalidDate.Withf("Format payment_date harus YYYY-MM-DD")
	} else if d != nil {
		payDate = *d
	}
	if payDate.After(today) {
		return nil, apperror.ErrInvalidDate.Withf("Tanggal bayar tidak boleh di masa depan")
	}
	if payDate.Year() < 2000 {
		return nil, apperror.ErrInvalidDate.Withf("Tanggal bayar tidak boleh sebelum tahun 2000")
	}

	db := s.DB.WithContext(ctx)
	var code string
	err := db.Transaction(func(tx *gorm.DB) error {
		var m model.PaymentModel
		if err := tx.First(&m, "payment_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Pembayaran tidak ditemukan")
		}
		code = m.PaymentCode
		switch m.PaymentStatus {
		case model.PaymentStatusPaid:
			return apperror.ErrAlreadyPaid.Withf("Pembayaran %s sudah lunas", m.PaymentCode)
		case model.PaymentStatusCancelled:
			return apperror.Conflict("Pembayaran yang dibatalkan tidak bisa dilunasi")
		}

		now := s.Now()
		patch := map[string]any{
			"payment_status":       model.PaymentStatusPaid,
			"payment_payment_date": payDate,
			"payment_paid_at":      now,
			"payment_paid_by":      actor.UserIDPtr(),
		}
		if req.Method != nil {
			patch["payment_method"] = *req.Method
		}
		if req.Reference != nil {
			patch["payment_reference"] = strings.TrimSpace(*req.Reference)
		}
		if req.Notes != nil {
			patch["payment_notes"] = *req.Notes
		}
		res := tx.Model(&model.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", id, model.PaymentStatusPending).
			Updates(patch)
		if res.Error != nil {
			return apperror.Internal("Gagal menyimpan pelunasan", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.ErrAlreadyPaid.Withf("Pembayaran %s sudah lunas", m.PaymentCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("payment marked paid",
		zap.String("payment_id", id.String()),
		zap.String("code", code),
		zap.String("payment_date", dbtime.FormatDate(payDate)),
		zap.String("actor_role", actor.Role),
	)
	return s.respond(db, id)
}

// Cancel: sudah dibatalkan → no-op.
func (s *PaymentService) Cancel(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.CancelPaymentRequest) (*dto.PaymentResponse, error) {
	if err := requireAdmin(actor, "batalkan tagihan"); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		var m model.PaymentModel
		if err := tx.First(&m, "payment_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Pembayaran tidak ditemukan")
		}
		switch m.PaymentStatus {
		case model.PaymentStatusCancelled:
			return nil
		case model.PaymentStatusPaid:
			return apperror.ErrAlreadyPaid.Withf("Pembayaran %s sudah lunas dan tidak bisa dibatalkan", m.PaymentCode)
		}
		patch := map[string]any{"payment_status": model.PaymentStatusCancelled}
		if req.Notes != nil {
			patch["payment_notes"] = *req.Notes
		}
		res := tx.Model(&model.PaymentModel{}).
			Where("payment_id = ? AND payment_status = ?", id, model.PaymentStatusPending).
			Updates(patch)
		if res.Error != nil {
			return apperror.Internal("Gagal membatalkan tagihan", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("Status pembayaran berubah, coba lagi")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("payment cancelled", zap.String("payment_id", id.String()))
	return s.respond(db, id)
}

/* ===================== UPDATE / DELETE ===================== */

// UpdatePayment: nominal hanya boleh diubah selama pending; status lewat MarkPaid/Cancel.
func (s *PaymentService) UpdatePayment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := requireAdmin(actor, "ubah tagihan"); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		var m model.PaymentModel
		if err := tx.First(&m, "payment_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Pembayaran tidak ditemukan")
		}
		patch := map[string]any{}
		if req.Amount != nil {
			if m.PaymentStatus != model.PaymentStatusPending {
				return apperror.InvalidInput("Nominal hanya bisa diubah selama tagihan pending")
			}
			if !req.Amount.IsPositive() {
				return apperror.InvalidInput("Nominal harus lebih dari 0")
			}
			patch["payment_amount"] = *req.Amount
		}
		if req.DueDate != nil {
			d, err := dbtime.ParseDate(*req.DueDate)
			if err != nil {
				return apperror.ErrInvalidDate.Withf("Format due_date harus YYYY-MM-DD")
			}
			patch["payment_due_date"] = d
		}
		if req.Method != nil {
			patch["payment_method"] = *req.Method
		}
		if req.Reference != nil {
			patch["payment_reference"] = strings.TrimSpace(*req.Reference)
		}
		if req.BankName != nil {
			patch["payment_bank_name"] = *req.BankName
		}
		if req.BankAccountName != nil {
			patch["payment_bank_account_name"] = *req.BankAccountName
		}
		if req.BankAccountNumber != nil {
			patch["payment_bank_account_number"] = *req.BankAccountNumber
		}
		if req.Notes != nil {
			patch["payment_notes"] = *req.Notes
		}
		if len(patch) == 0 {
			return nil
		}
		if err := tx.Model(&model.PaymentModel{}).Where("payment_id = ?", id).Updates(patch).Error; err != nil {
			return apperror.FromDB(err, "Gagal mengubah tagihan")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.respond(db, id)
}

// DeletePayment: pembayaran lunas tidak pernah dihapus.
func (s *PaymentService) DeletePayment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor, "hapus tagihan"); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.PaymentModel
		if err := tx.First(&m, "payment_id = ?", id).Error; err != nil {
			return apperror.FromDB(err, "Pembayaran tidak ditemukan")
		}
		if m.PaymentStatus == model.PaymentStatusPaid {
			return apperror.PreconditionFailed("Pembayaran yang sudah lunas tidak bisa dihapus")
		}
		res := tx.Where("payment_id = ? AND payment_status <> ?", id, model.PaymentStatusPaid).
			Delete(&model.PaymentModel{})
		if res.Error != nil {
			return apperror.Internal("Gagal menghapus tagihan", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.PreconditionFailed("Pembayaran yang sudah lunas tidak bisa dihapus")
		}
		s.Log.Info("payment deleted", zap.String("payment_id", id.String()), zap.String("code", m.PaymentCode))
		return nil
	})
}

/* ===================== PROOF ===================== */

// UploadProof menyimpan bukti bayar (gambar/pdf) dan mencatat referensinya.
func (s *PaymentService) UploadProof(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, obj storage.Object) (*dto.PaymentResponse, error) {
	if s.Files == nil {
		return nil, apperror.Internal("Penyimpanan file belum dikonfigurasi", nil)
	}
	db := s.DB.WithContext(ctx)
	m, err := FindPayment(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, m); err != nil {
		return nil, err
	}
	if m.PaymentStatus == model.PaymentStatusCancelled {
		return nil, apperror.Conflict("Tagihan sudah dibatalkan")
	}

	ref, err := storage.Save(ctx, s.Files, proofDir, obj, constants.ProofAllowedExt)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&model.PaymentModel{}).Where("payment_id = ?", id).
		Update("payment_proof_url", ref).Error; err != nil {
		_ = s.Files.Delete(ctx, ref)
		return nil, apperror.Internal("Gagal menyimpan bukti bayar", err)
	}
	if old := m.PaymentProofURL; old != nil && *old != "" && *old != ref {
		if err := s.Files.Delete(ctx, *old); err != nil {
			s.Log.Warn("delete old proof failed", zap.String("ref", *old), zap.Error(err))
		}
	}
	s.Log.Info("payment proof uploaded", zap.String("payment_id", id.String()), zap.String("ref", ref))
	return s.respond(db, id)
}

/* ===================== READ ===================== */

func (s *PaymentService) GetPayment(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) (*dto.PaymentResponse, error) {
	m, err := FindPayment(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, m); err != nil {
		return nil, err
	}
	out := dto.FromModel(m, s.today())
	return &out, nil
}

var paymentSort = map[string]string{
	"due_date":     "payments.payment_due_date",
	"payment_date": "payments.payment_payment_date",
	"amount":       "payments.payment_amount",
	"created_at":   "payments.payment_created_at",
}

// filtered membangun query payments sesuai filter. Tenant selalu dibatasi ke miliknya.
func (s *PaymentService) filtered(db *gorm.DB, actor helperAuth.Actor, q dto.ListPaymentsQuery) (*gorm.DB, error) {
	tx := db.Model(&model.PaymentModel{})
	if !actor.IsPrivileged() {
		prof, err := profileService.FindByUserID(db, actor.UserID)
		if err != nil {
			return nil, apperror.Forbidden("Hanya penyewa terdaftar yang bisa melihat pembayaran")
		}
		tx = tx.Where("payments.payment_tenant_id = ?", prof.TenantProfileID)
	} else if q.TenantID != nil {
		tx = tx.Where("payments.payment_tenant_id = ?", *q.TenantID)
	}

	switch st := model.PaymentStatus(strings.ToLower(strings.TrimSpace(q.Status))); st {
	case "":
	case model.PaymentStatusOverdue:
		tx = tx.Where("payments.payment_status = ? AND payments.payment_due_date < ?", model.PaymentStatusPending, s.today())
	case model.PaymentStatusPending, model.PaymentStatusPaid, model.PaymentStatusCancelled:
		tx = tx.Where("payments.payment_status = ?", st)
	default:
		return nil, apperror.InvalidInput("Status harus pending, paid, cancelled, atau overdue")
	}

	if q.Month != nil {
		tx = tx.Where("payments.payment_period_month = ?", *q.Month)
	}
	if q.Year != nil {
		tx = tx.Where("payments.payment_period_year = ?", *q.Year)
	}
	if q.DueFrom != "" {
		d, err := dbtime.ParseDate(q.DueFrom)
		if err != nil {
			return nil, apperror.ErrInvalidDate.Withf("Format due_date_from harus YYYY-MM-DD")
		}
		tx = tx.Where("payments.payment_due_date >= ?", d)
	}
	if q.DueTo != "" {
		d, err := dbtime.ParseDate(q.DueTo)
		if err != nil {
			return nil, apperror.ErrInvalidDate.Withf("Format due_date_to harus YYYY-MM-DD")
		}
		tx = tx.Where("payments.payment_due_date <= ?", d)
	}
	if name := strings.ToLower(strings.TrimSpace(q.TenantName)); name != "" {
		like := "%" + name + "%"
		tx = tx.Where(`payments.payment_tenant_id IN (
			SELECT tenant_profiles.tenant_profile_id FROM tenant_profiles
			JOIN users ON users.id = tenant_profiles.tenant_profile_user_id
			WHERE LOWER(users.full_name) LIKE ? OR LOWER(users.email) LIKE ?)`, like, like)
	}
	if ref := strings.ToLower(strings.TrimSpace(q.Reference)); ref != "" {
		tx = tx.Where("LOWER(payments.payment_reference) LIKE ?", "%"+ref+"%")
	}
	return tx, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, actor helperAuth.Actor, q dto.ListPaymentsQuery, p helper.Params) ([]dto.PaymentResponse, int64, error) {
	tx, err := s.filtered(s.DB.WithContext(ctx), actor, q)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal menghitung pembayaran", err)
	}
	order, err := p.OrderClause(paymentSort, "due_date")
	if err != nil {
		return nil, 0, apperror.InvalidInput(err.Error())
	}
	var rows []model.PaymentModel
	if err := preloadAll(tx).Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil pembayaran", err)
	}
	return dto.FromModelList(rows, s.today()), total, nil
}

// ListByTenant: riwayat tagihan satu penyewa, periode terbaru dulu.
func (s *PaymentService) ListByTenant(ctx context.Context, actor helperAuth.Actor, tenantID uuid.UUID) ([]dto.PaymentResponse, error) {
	db := s.DB.WithContext(ctx)
	prof, err := profileService.FindByID(db, tenantID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() && prof.TenantProfileUserID != actor.UserID {
		return nil, apperror.Forbidden("Anda tidak berhak mengakses pembayaran ini")
	}
	var rows []model.PaymentModel
	if err := preloadAll(db).
		Where("payment_tenant_id = ?", tenantID).
		Order("payment_period_year DESC, payment_period_month DESC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("Gagal mengambil pembayaran", err)
	}
	return dto.FromModelList(rows, s.today()), nil
}

/* ===================== GATEWAY ===================== */

// SetGatewayOrder mencatat order id gateway pada tagihan pending.
func (s *PaymentService) SetGatewayOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	res := s.DB.WithContext(ctx).Model(&model.PaymentModel{}).
		Where("payment_id = ? AND payment_status = ?", id, model.PaymentStatusPending).
		Update("payment_gateway_order_id", orderID)
	if res.Error != nil {
		return apperror.FromDB(res.Error, "Gagal menyimpan order gateway")
	}
	if res.RowsAffected == 0 {
		return apperror.PreconditionFailed("Tagihan sudah tidak pending")
	}
	return nil
}

// FindByGatewayOrder: id + nominal terkini tagihan untuk order Midtrans.
func (s *PaymentService) FindByGatewayOrder(ctx context.Context, orderID string) (*model.PaymentModel, error) {
	var m model.PaymentModel
	if err := s.DB.WithContext(ctx).Select("payment_id", "payment_amount", "payment_status").
		First(&m, "payment_gateway_order_id = ?", orderID).Error; err != nil {
		return nil, apperror.FromDB(err, "Pembayaran untuk order ini tidak ditemukan")
	}
	return &m, nil
}
