package route

import (
	"github.com/gofiber/fiber/v2"

	"kosan_backend/internals/features/payments/gateway"
	paymentController "kosan_backend/internals/features/payments/payments/controller"
	"kosan_backend/internals/features/payments/payments/service"
	"kosan_backend/internals/middlewares"
)

// PaymentAdminRoutes: gw boleh nil kalau Midtrans tidak dikonfigurasi.
func PaymentAdminRoutes(r fiber.Router, svc *service.PaymentService, gw *gateway.Gateway) {
	ctl := paymentController.NewPaymentController(svc)

	g := r.Group("/payments")
	g.Get("/", ctl.List)
	g.Post("/", ctl.Create)
	g.Post("/generate", ctl.Generate)
	g.Get("/statistics", ctl.Statistics)
	g.Get("/export", ctl.Export)
	g.Get("/tenant/:tenant_id", ctl.ListByTenant)
	g.Get("/:id", ctl.GetByID)
	g.Patch("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/mark-paid", ctl.MarkPaid)
	g.Post("/:id/cancel", ctl.Cancel)
	g.Post("/:id/proof", ctl.UploadProof)
	g.Get("/:id/receipt", ctl.Receipt)
	if gw != nil {
		g.Post("/:id/charge", gateway.NewController(gw).Charge)
	}
}

// PaymentUserRoutes: penyewa hanya melihat tagihannya sendiri (dibatasi di service).
func PaymentUserRoutes(r fiber.Router, svc *service.PaymentService, gw *gateway.Gateway) {
	ctl := paymentController.NewPaymentController(svc)

	g := r.Group("/payments")
	g.Get("/", ctl.List)
	g.Get("/tenant/:tenant_id", ctl.ListByTenant)
	g.Get("/:id", ctl.GetByID)
	g.Post("/:id/proof", ctl.UploadProof)
	g.Get("/:id/receipt", ctl.Receipt)
	if gw != nil {
		g.Post("/:id/charge", gateway.NewController(gw).Charge)
	}
}

// PaymentPublicRoutes: webhook Midtrans tanpa JWT, diverifikasi lewat signature.
func PaymentPublicRoutes(r fiber.Router, gw *gateway.Gateway) {
	if gw == nil {
		return
	}
	r.Post("/payments/notification", middlewares.WebhookRateLimiter(), gateway.NewController(gw).Notification)
}
