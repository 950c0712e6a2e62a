package courseValidator

import (
	"lms/middleware"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors turns validator output into the field -> message map used by
// middleware.ValidationErrorResponse
func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["body"] = err.Error()
		return errors
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		errors[field] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required!"
	case "min":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at least " + fe.Param() + " characters long!"
		}
		return fe.Field() + " must contain at least " + fe.Param() + " item(s)!"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long!"
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param() + "!"
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param() + "!"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param() + "!"
	}
	return fe.Field() + " is invalid!"
}

// parseBody decodes and validates the request body into req. It writes the
// error response itself and returns ok=false when the request is rejected.
func parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if err := validate.Struct(req); err != nil {
		return false, middleware.ValidationErrorResponse(c, fieldErrors(err))
	}
	return true, nil
}

// ParamID validates a positive numeric route parameter and stores it in
// c.Locals under the same name as a uint.
func ParamID(name, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(name))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}

		c.Locals(name, uint(id))
		return c.Next()
	}
}
