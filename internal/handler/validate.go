package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator plugs go-playground/validator into echo's c.Validate.
// Field names in errors are the JSON names the client sent.
type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Campo inválido: "+verrs[0].Field())
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Dados inválidos")
}

// bindValid binds the request body into req and validates it. On failure
// it returns the message for a 400 response.
func bindValid(c echo.Context, req interface{}) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "Dados inválidos", false
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if msg, ok := he.Message.(string); ok {
				return msg, false
			}
		}
		return "Dados inválidos", false
	}
	return "", true
}
