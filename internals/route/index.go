// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kosan_backend/internals/constants"
	"kosan_backend/internals/features/payments/gateway"
	paymentService "kosan_backend/internals/features/payments/payments/service"
	authService "kosan_backend/internals/features/users/auth/service"
	"kosan_backend/internals/helpers/storage"
	rateLimiter "kosan_backend/internals/middlewares"
	authMiddleware "kosan_backend/internals/middlewares/auth"
	routeDetails "kosan_backend/internals/route/details"
)

var startTime time.Time

// Deps: kolaborator yang dibuat sekali di main dan dibagi ke semua route.
type Deps struct {
	Log      *zap.Logger
	Auth     *authService.AuthService
	Payments *paymentService.PaymentService
	Gateway  *gateway.Gateway // nil kalau MIDTRANS_SERVER_KEY kosong
	Files    storage.FileStore
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()
	requireAuth := authMiddleware.AuthMiddleware(deps.Auth, deps.Log)

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, deps.Auth, requireAuth)

	// ===================== GROUPS =====================
	api := app.Group("/api", rateLimiter.GlobalRateLimiter())

	// PUBLIC → tanpa JWT
	log.Println("[INFO] Setting up PUBLIC group...")
	public := api.Group("/public")

	// PRIVATE (USER) → login, role apa saja
	log.Println("[INFO] Setting up PRIVATE group...")
	private := api.Group("/u", requireAuth)

	// ADMIN
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := api.Group("/a",
		requireAuth,
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("manajemen kos"), constants.RoleAdmin),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserUserRoutes(private, db, deps.Log)
	routeDetails.UserAdminRoutes(admin, db, deps.Log)

	log.Println("[INFO] Mounting Room routes...")
	routeDetails.RoomUserRoutes(private, db, deps.Log)
	routeDetails.RoomAdminRoutes(admin, db, deps.Log)

	log.Println("[INFO] Mounting Tenant routes...")
	routeDetails.TenantUserRoutes(private, db, deps.Log)
	routeDetails.TenantAdminRoutes(admin, db, deps.Log)

	log.Println("[INFO] Mounting Payment routes...")
	routeDetails.PaymentPublicRoutes(public, deps.Gateway)
	routeDetails.PaymentUserRoutes(private, deps.Payments, deps.Gateway)
	routeDetails.PaymentAdminRoutes(admin, deps.Payments, deps.Gateway)

	log.Println("[INFO] Mounting Complaint routes...")
	routeDetails.ComplaintUserRoutes(private, db, deps.Log, deps.Files)
	routeDetails.ComplaintAdminRoutes(admin, db, deps.Log, deps.Files)

	log.Println("[INFO] Mounting Report routes...")
	routeDetails.ReportUserRoutes(private, db, deps.Log)
	routeDetails.ReportAdminRoutes(admin, db, deps.Log)
}
