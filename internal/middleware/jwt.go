package middleware // middleware holds the echo middleware shared by the API routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pousada-reservation/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
)

// JWTAuth validates a Bearer access token and stores its subject, role and
// email in the echo context. A missing token yields 401 and an invalid or
// expired one 403.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token de acesso requerido"})
			}

			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido"})
			}

			// sub is encoded as a JSON number
			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Token inválido"})
			}
			c.Set(CtxUserID, uint64(sub))
			c.Set(CtxRole, claims["role"])
			c.Set(CtxEmail, claims["email"])
			return next(c)
		}
	}
}
