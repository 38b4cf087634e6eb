package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/middleware"
)

// AuthHandler issues staff access tokens.
type AuthHandler struct {
	svc AuthService
	log *zap.Logger
}

func NewAuthHandler(svc AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Login(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return fail(c, h.log, err, "Credenciais inválidas")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      out.Token,
		"expires_at": out.ExpiresAt,
		"user": userPart{
			ID:    out.User.ID,
			Email: out.User.Email,
			Name:  out.User.Name,
			Role:  out.User.Role,
		},
	})
}

// Me handles GET /api/auth/me and echoes the token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token de acesso requerido"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": echo.Map{
		"id":    id,
		"email": c.Get(middleware.CtxEmail),
		"role":  c.Get(middleware.CtxRole),
	}})
}
