package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromCtx(t *testing.T) {
	uid := uuid.New()
	cases := []struct {
		name   string
		userID any
		role   any
		status int
	}{
		{"valid admin", uid.String(), "admin", fiber.StatusOK},
		{"valid tenant uuid", uid, "Tenant", fiber.StatusOK},
		{"no login", nil, "admin", fiber.StatusUnauthorized},
		{"bad uuid", "xyz", "admin", fiber.StatusBadRequest},
		{"unknown role", uid.String(), "owner", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals(LocUserID, tc.userID)
				}
				c.Locals(LocUserRole, tc.role)
				a, err := ActorFromCtx(c)
				if err != nil {
					return err
				}
				assert.Equal(t, uid, a.UserID)
				return c.SendStatus(fiber.StatusOK)
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSystemActor(t *testing.T) {
	a := SystemActor()
	assert.True(t, a.IsPrivileged())
	assert.False(t, a.IsAdmin())
	assert.Nil(t, a.UserIDPtr())
	assert.NotNil(t, AdminActor(uuid.New()).UserIDPtr())
}
