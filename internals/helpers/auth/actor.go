// file: internals/helpers/auth/actor.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kosan_backend/internals/constants"
)

// Locals yang diisi AuthMiddleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
)

// Actor adalah identitas pemanggil yang diteruskan eksplisit ke setiap operasi service.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool  { return a.Role == constants.RoleAdmin }
func (a Actor) IsTenant() bool { return a.Role == constants.RoleTenant }
func (a Actor) IsSystem() bool { return a.Role == constants.RoleSystem }

// IsPrivileged: admin atau proses sistem (cron, CLI, webhook).
func (a Actor) IsPrivileged() bool { return a.IsAdmin() || a.IsSystem() }

// UserIDPtr: nil untuk actor sistem.
func (a Actor) UserIDPtr() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

func SystemActor() Actor { return Actor{Role: constants.RoleSystem} }

func AdminActor(id uuid.UUID) Actor  { return Actor{UserID: id, Role: constants.RoleAdmin} }
func TenantActor(id uuid.UUID) Actor { return Actor{UserID: id, Role: constants.RoleTenant} }

// ActorFromCtx membaca user_id & role dari Locals.
// 401 kalau belum login, 400 kalau format user_id tidak valid.
func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	id, err := userIDFromLocals(c)
	if err != nil {
		return Actor{}, err
	}
	role, _ := c.Locals(LocUserRole).(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if !constants.IsValidRole(role) {
		return Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Role pada token tidak dikenal")
	}
	return Actor{UserID: id, Role: role}, nil
}

func userIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	var s string
	switch t := c.Locals(LocUserID).(type) {
	case nil:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}
	return id, nil
}
