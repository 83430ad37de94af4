package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	userController "kosan_backend/internals/features/users/user/controller"
)

func UserAdminRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := userController.NewUserController(db, log)

	g := r.Group("/users")
	g.Get("/", ctl.ListUsers)
	g.Post("/", ctl.CreateUser)
	g.Post("/tenants", ctl.CreateTenantUser)
	g.Get("/:id", ctl.GetUser)
	g.Patch("/:id", ctl.UpdateUser)
	g.Post("/:id/deactivate", ctl.DeactivateUser)
}

func UserRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := userController.NewUserController(db, log)

	g := r.Group("/users/me")
	g.Get("/", ctl.GetMe)
	g.Patch("/", ctl.UpdateMe)
	g.Post("/email", ctl.ChangeEmail)
	g.Post("/password", ctl.ChangePassword)
}
