package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// apiEndpoints is the route summary served by GET /api.
var apiEndpoints = []string{
	"GET /api/test - Teste da API",
	"GET /api/rooms - Listar quartos",
	"GET /api/rooms/:id - Detalhes do quarto",
	"POST /api/reservations - Criar reserva",
	"GET /api/reservations - Listar reservas",
	"GET /api/reservations/:id - Detalhes da reserva",
	"PUT /api/reservations/:id - Atualizar reserva",
	"PATCH /api/reservations/:id/status - Atualizar status",
	"DELETE /api/reservations/:id - Excluir reserva",
	"GET /api/reservations/:id/history - Histórico da reserva",
	"GET /api/reservations/arrivals - Próximas chegadas",
	"POST /api/auth/login - Login",
	"GET /api/auth/me - Usuário autenticado",
	"POST /api/messages - Enviar mensagem",
	"GET /api/messages - Listar mensagens",
	"PATCH /api/messages/:id/read - Marcar mensagem como lida",
	"POST /api/newsletter - Inscrever na newsletter",
	"GET /api/newsletter - Listar inscrições",
	"GET /api/newsletter/export - Exportar inscrições (CSV)",
	"GET /api/settings - Configurações da pousada",
	"PUT /api/settings/:key - Alterar configuração",
}

// HealthHandler serves liveness and API info routes.
type HealthHandler struct {
	db     Pinger
	dbName string
	now    func() time.Time
}

func NewHealthHandler(db Pinger, dbName string) *HealthHandler {
	return &HealthHandler{db: db, dbName: dbName, now: time.Now}
}

// Healthz answers "ok" while the database responds.
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}

// Test handles GET /api/test.
func (h *HealthHandler) Test(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "API funcionando!",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
		"database":  h.dbName,
		"status":    "OK",
	})
}

// Info handles GET /api.
func (h *HealthHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "API do Sistema de Reservas - Recanto MD Olavio",
		"version":   "2.0.0",
		"endpoints": apiEndpoints,
	})
}
