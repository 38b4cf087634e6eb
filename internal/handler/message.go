package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

const msgMessageGone = "Mensagem não encontrada"

// MessageHandler serves the contact form and the staff inbox.
type MessageHandler struct {
	svc MessageService
	log *zap.Logger
}

func NewMessageHandler(svc MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, log: log}
}

type messageReq struct {
	Sender  string `json:"sender" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// Create handles POST /api/messages.
func (h *MessageHandler) Create(c echo.Context) error {
	var req messageReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	_, err := h.svc.Create(ctx, model.ContactMessage{
		Sender:  strings.TrimSpace(req.Sender),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Content: req.Content,
	})
	if err != nil {
		return fail(c, h.log, err, msgMessageGone)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Mensagem enviada com sucesso"})
}

// List handles GET /api/messages[?unread=true].
func (h *MessageHandler) List(c echo.Context) error {
	unread, _ := strconv.ParseBool(c.QueryParam("unread"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, unread)
	if err != nil {
		return fail(c, h.log, err, msgMessageGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": list})
}

// MarkRead handles PATCH /api/messages/:id/read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgMessageGone})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.svc.MarkRead(ctx, id); err != nil {
		return fail(c, h.log, err, msgMessageGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Mensagem marcada como lida"})
}
