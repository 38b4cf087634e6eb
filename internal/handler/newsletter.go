package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// NewsletterHandler serves the newsletter sign-up form and the staff list.
type NewsletterHandler struct {
	svc NewsletterService
	log *zap.Logger
	now func() time.Time
}

func NewNewsletterHandler(svc NewsletterService, log *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{svc: svc, log: log, now: time.Now}
}

type newsletterReq struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// Subscribe handles POST /api/newsletter.
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req newsletterReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sub, err := h.svc.Subscribe(ctx, req.Email)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Este email já está inscrito em nossa newsletter"})
	}
	if err != nil {
		return fail(c, h.log, err, "")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Obrigado por se inscrever em nossa newsletter!",
		"id":      sub.ID,
	})
}

// List handles GET /api/newsletter[?search=].
func (h *NewsletterHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, c.QueryParam("search"))
	if err != nil {
		return fail(c, h.log, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"subscriptions": list, "total": len(list)})
}

// Export handles GET /api/newsletter/export and streams the list as CSV.
func (h *NewsletterHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, c.QueryParam("search"))
	if err != nil {
		return fail(c, h.log, err, "")
	}

	name := "newsletter_subscriptions_" + h.now().UTC().Format(time.DateOnly) + ".csv"
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	resp.WriteHeader(http.StatusOK)

	w := csv.NewWriter(resp)
	_ = w.Write([]string{"ID", "Email", "Data de Inscrição"})
	for _, s := range list {
		_ = w.Write([]string{strconv.FormatUint(s.ID, 10), s.Email, s.CreatedAt.UTC().Format(time.DateOnly)})
	}
	w.Flush()
	return w.Error()
}
