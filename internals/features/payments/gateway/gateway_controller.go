package gateway

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	helper "kosan_backend/internals/helpers"
	helperAuth "kosan_backend/internals/helpers/auth"
)

type Controller struct {
	GW *Gateway
}

func NewController(gw *Gateway) *Controller { return &Controller{GW: gw} }

// POST /payments/:id/charge
func (ctl *Controller) Charge(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := ctl.GW.CreateCharge(c.UserContext(), actor, id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Transaksi pembayaran dibuat", out)
}

// POST /api/public/payments/notification
// Selalu 200 untuk order yang tidak dikenal supaya Midtrans tidak retry terus.
func (ctl *Controller) Notification(c *fiber.Ctx) error {
	var n Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload notifikasi tidak valid")
	}
	status, err := ctl.GW.HandleNotification(c.UserContext(), n)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Signature tidak valid")
		}
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Notifikasi diproses", fiber.Map{"order_id": n.OrderID, "status": status})
}
