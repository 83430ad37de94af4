package details

import (
	"github.com/gofiber/fiber/v2"

	"kosan_backend/internals/features/payments/gateway"
	paymentRoute "kosan_backend/internals/features/payments/payments/route"
	paymentService "kosan_backend/internals/features/payments/payments/service"
)

// gw nil → endpoint charge & notifikasi tidak dipasang.
func PaymentPublicRoutes(r fiber.Router, gw *gateway.Gateway) {
	paymentRoute.PaymentPublicRoutes(r, gw)
}

func PaymentUserRoutes(r fiber.Router, svc *paymentService.PaymentService, gw *gateway.Gateway) {
	paymentRoute.PaymentUserRoutes(r, svc, gw)
}

func PaymentAdminRoutes(r fiber.Router, svc *paymentService.PaymentService, gw *gateway.Gateway) {
	paymentRoute.PaymentAdminRoutes(r, svc, gw)
}
