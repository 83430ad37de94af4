package routes

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kosan_backend/internals/configs"
	"kosan_backend/internals/constants"
	paymentService "kosan_backend/internals/features/payments/payments/service"
	authService "kosan_backend/internals/features/users/auth/service"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/storage"
	"kosan_backend/internals/testutil"
)

func TestSetupRoutesGuardsGroups(t *testing.T) {
	db := testutil.NewTestDB(t)
	auth := authService.NewAuthService(db, zap.NewNop(), authService.NewTokenService("s3cret", time.Hour))
	files := storage.NewMemoryStore()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error { return helper.JsonAppError(c, err) },
	})
	SetupRoutes(app, db, Deps{
		Log:      zap.NewNop(),
		Auth:     auth,
		Payments: paymentService.NewPaymentService(db, zap.NewNop(), configs.Billing{DueDay: 5, BankName: "Bank BCA"}, files),
		Files:    files,
	})

	admin := testutil.SeedUser(t, db, "admin", constants.RoleAdmin)
	adminTok, _, err := auth.Tokens.Issue(admin)
	require.NoError(t, err)
	tenant := testutil.SeedTenant(t, db, "budi")
	tenantTok, _, err := auth.Tokens.Issue(tenant.User)
	require.NoError(t, err)

	call := func(method, path, token, body string) (int, string) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, r)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := app.Test(req, -1)
		require.NoError(t, err)
		b, _ := io.ReadAll(res.Body)
		return res.StatusCode, string(b)
	}

	status, _ := call("GET", "/health", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call("GET", "/api/u/rooms", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call("GET", "/api/a/dashboard", tenantTok, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := call("GET", "/api/a/dashboard", adminTok, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"success":true`)

	status, body = call("POST", "/api/u/complaints", tenantTok,
		`{"complaint_title":"Keran bocor","complaint_description":"Keran kamar mandi menetes terus sejak pagi","complaint_priority":"high"}`)
	assert.Equal(t, fiber.StatusCreated, status, body)

	status, _ = call("GET", "/api/u/history", tenantTok, "")
	assert.Equal(t, fiber.StatusOK, status)

	// gateway tidak dikonfigurasi: webhook tidak dipasang
	status, body = call("POST", "/api/public/payments/notification", "", `{}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, `"success":false`)
}
