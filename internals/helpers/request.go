package helper

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kosan_backend/internals/helpers/apperror"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator: satu instance dipakai bersama (cache struct validator).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, apperror.InvalidInput(name + " tidak valid")
	}
	return id, nil
}

// BindJSON: parse body lalu validasi. Error validasi dikembalikan apa adanya
// supaya JsonAppError merender per-field.
func BindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.InvalidInput("Payload tidak valid")
	}
	return Validator().Struct(dst)
}

func BindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return apperror.InvalidInput("Query tidak valid")
	}
	return Validator().Struct(dst)
}
