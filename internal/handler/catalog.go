package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// CatalogHandler serves rooms and inn settings.
type CatalogHandler struct {
	svc CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// Rooms handles GET /api/rooms[?checkIn=&checkOut=]. The date filter only
// applies when both dates are present.
func (h *CatalogHandler) Rooms(c echo.Context) error {
	var stay *repository.DateRange
	in, out := c.QueryParam("checkIn"), c.QueryParam("checkOut")
	if in != "" && out != "" {
		checkIn, err1 := parseDate(in)
		checkOut, err2 := parseDate(out)
		if err1 != nil || err2 != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidDate})
		}
		stay = &repository.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rooms, err := h.svc.Rooms(ctx, stay)
	if err != nil {
		return fail(c, h.log, err, "Quarto não encontrado")
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// Room handles GET /api/rooms/:id.
func (h *CatalogHandler) Room(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	room, err := h.svc.Room(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err, "Quarto não encontrado")
	}
	return c.JSON(http.StatusOK, echo.Map{"room": room})
}

// Settings handles GET /api/settings.
func (h *CatalogHandler) Settings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.Settings(ctx)
	if err != nil {
		return fail(c, h.log, err, "Configuração não encontrada")
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": list})
}

type settingReq struct {
	Value *string `json:"value" validate:"required"`
}

// SetSetting handles PUT /api/settings/:key.
func (h *CatalogHandler) SetSetting(c echo.Context) error {
	var req settingReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.svc.SetSetting(ctx, c.Param("key"), *req.Value); err != nil {
		return fail(c, h.log, err, "Configuração não encontrada")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Configuração atualizada com sucesso"})
}
