package controller

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"kosan_backend/internals/features/payments/payments/dto"
	"kosan_backend/internals/features/payments/payments/service"
	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
	"kosan_backend/internals/helpers/storage"
)

type PaymentController struct {
	Svc *service.PaymentService
}

func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{Svc: svc}
}

// GET /payments?status=overdue&tenant_id=&month=&year=&due_date_from=&due_date_to=&tenant_name=&payment_reference=&ordering=-due_date
func (ctl *PaymentController) List(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListPaymentsQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ParseFiber(c, "due_date", "desc", helper.AdminOpts)

	rows, total, err := ctl.Svc.ListPayments(c.UserContext(), actor, q, p)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "Daftar pembayaran", rows, helper.BuildMeta(total, p))
}

// GET /payments/tenant/:tenant_id
func (ctl *PaymentController) ListByTenant(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	tenantID, err := helper.ParseUUIDParam(c, "tenant_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, err := ctl.Svc.ListByTenant(c.UserContext(), actor, tenantID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Pembayaran penyewa", rows)
}

func (ctl *PaymentController) GetByID(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.GetPayment(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Detail pembayaran", out)
}

func (ctl *PaymentController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CreatePaymentRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.CreatePayment(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Tagihan berhasil dibuat", out)
}

// POST /payments/generate {month, year, due_day?, dry_run?}
func (ctl *PaymentController) Generate(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.GeneratePeriodRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.GeneratePeriod(c.UserContext(), actor, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	msg := "Tagihan " + out.PeriodLabel + " dibuat"
	if out.DryRun {
		msg = "Rencana tagihan " + out.PeriodLabel + " (dry run)"
	}
	return helper.JsonOK(c, msg, out)
}

func (ctl *PaymentController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.UpdatePaymentRequest
	if err := helper.BindJSON(c, &req); err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.UpdatePayment(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Tagihan diperbarui", out)
}

func (ctl *PaymentController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := ctl.Svc.DeletePayment(c.UserContext(), actor, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "Tagihan dihapus", fiber.Map{"payment_id": id})
}

// POST /payments/:id/mark-paid
func (ctl *PaymentController) MarkPaid(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := helper.BindJSON(c, &req); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	out, err := ctl.Svc.MarkPaid(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Pembayaran ditandai lunas", out)
}

// POST /payments/:id/cancel
func (ctl *PaymentController) Cancel(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.CancelPaymentRequest
	if len(c.Body()) > 0 {
		if err := helper.BindJSON(c, &req); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	out, err := ctl.Svc.Cancel(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Tagihan dibatalkan", out)
}

// POST /payments/:id/proof (multipart, field "file")
func (ctl *PaymentController) UploadProof(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "File bukti bayar wajib diunggah (field: file)")
	}
	obj, err := storage.ReadFormFile(fh)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.UploadProof(c.UserContext(), actor, id, obj)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "Bukti bayar tersimpan", out)
}

func (ctl *PaymentController) Statistics(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Statistics(c.UserContext(), actor)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Statistik pembayaran", out)
}

// GET /payments/:id/receipt
func (ctl *PaymentController) Receipt(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.Svc.Receipt(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Kuitansi pembayaran", out)
}

// GET /payments/export (filter sama dengan List, tanpa paging)
func (ctl *PaymentController) Export(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var q dto.ListPaymentsQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return helper.JsonAppError(c, err)
	}
	var buf bytes.Buffer
	if _, err := ctl.Svc.ExportCSV(c.UserContext(), actor, q, &buf); err != nil {
		return helper.JsonAppError(c, err)
	}
	name := fmt.Sprintf("payments_export_%s.csv", ctl.Svc.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
