package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/middleware"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/service"
)

const (
	requestTimeout      = 5 * time.Second
	msgReservationGone  = "Reserva não encontrada"
	msgInvalidDate      = "Data inválida, use AAAA-MM-DD"
	msgReservationSaved = "Reserva criada com sucesso"
)

// ReservationHandler serves guest bookings and the staff reservation panel.
type ReservationHandler struct {
	svc ReservationService
	log *zap.Logger
}

func NewReservationHandler(svc ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: log}
}

// ----- DTOs -----

// createReservationReq is the booking form as sent by the public site.
type createReservationReq struct {
	GuestName       string   `json:"guestName" validate:"required,max=255"`
	ContactEmail    string   `json:"contactEmail" validate:"required,email,max=255"`
	ContactPhone    string   `json:"contactPhone" validate:"required,max=50"`
	RoomID          string   `json:"roomId" validate:"required,max=50"`
	RoomName        string   `json:"roomName" validate:"max=255"`
	CheckIn         string   `json:"checkIn" validate:"required"`
	CheckOut        string   `json:"checkOut" validate:"required"`
	Adults          int      `json:"adults" validate:"min=1"`
	Children        int      `json:"children" validate:"min=0"`
	SpecialRequests *string  `json:"specialRequests"`
	TotalPrice      *float64 `json:"totalPrice"`
}

// updateReservationReq is the staff edit form; it uses column names.
type updateReservationReq struct {
	GuestName       string  `json:"guest_name" validate:"required,max=255"`
	ContactEmail    string  `json:"contact_email" validate:"required,email,max=255"`
	ContactPhone    string  `json:"contact_phone" validate:"required,max=50"`
	RoomName        string  `json:"room_name" validate:"max=255"`
	CheckIn         string  `json:"check_in" validate:"required"`
	CheckOut        string  `json:"check_out" validate:"required"`
	Adults          int     `json:"adults" validate:"min=1"`
	Children        int     `json:"children" validate:"min=0"`
	SpecialRequests *string `json:"special_requests"`
	TotalPrice      float64 `json:"total_price" validate:"min=0"`
	Notes           *string `json:"notes"`
}

type statusReq struct {
	Status string `json:"status"`
}

type reservationDetails struct {
	ID       string  `json:"id"`
	Guest    string  `json:"guest"`
	Room     string  `json:"room"`
	CheckIn  string  `json:"checkIn"`
	CheckOut string  `json:"checkOut"`
	Total    float64 `json:"total"`
}

// Create handles POST /api/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	checkIn, err1 := parseDate(req.CheckIn)
	checkOut, err2 := parseDate(req.CheckOut)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidDate})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Create(ctx, service.CreateInput{
		GuestName:       strings.TrimSpace(req.GuestName),
		ContactEmail:    strings.TrimSpace(req.ContactEmail),
		ContactPhone:    strings.TrimSpace(req.ContactPhone),
		RoomID:          strings.TrimSpace(req.RoomID),
		RoomName:        strings.TrimSpace(req.RoomName),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Adults:          req.Adults,
		Children:        req.Children,
		SpecialRequests: req.SpecialRequests,
		ClientTotal:     req.TotalPrice,
	})
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       msgReservationSaved,
		"reservationId": res.ID,
		"details": reservationDetails{
			ID:       res.ID,
			Guest:    res.GuestName,
			Room:     res.RoomName,
			CheckIn:  res.CheckIn.Format(time.DateOnly),
			CheckOut: res.CheckOut.Format(time.DateOnly),
			Total:    res.TotalPrice,
		},
	})
}

// List handles GET /api/reservations?status=&search=&limit=&offset=.
func (h *ReservationHandler) List(c echo.Context) error {
	f := repository.ReservationFilter{
		Status: strings.TrimSpace(c.QueryParam("status")),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		f.Offset = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.List(ctx, f)
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Update handles PUT /api/reservations/:id.
func (h *ReservationHandler) Update(c echo.Context) error {
	var req updateReservationReq
	if msg, ok := bindValid(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	checkIn, err1 := parseDate(req.CheckIn)
	checkOut, err2 := parseDate(req.CheckOut)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidDate})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Update(ctx, c.Param("id"), service.UpdateInput{
		GuestName:       strings.TrimSpace(req.GuestName),
		ContactEmail:    strings.TrimSpace(req.ContactEmail),
		ContactPhone:    strings.TrimSpace(req.ContactPhone),
		RoomName:        strings.TrimSpace(req.RoomName),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Adults:          req.Adults,
		Children:        req.Children,
		SpecialRequests: req.SpecialRequests,
		TotalPrice:      req.TotalPrice,
		Notes:           req.Notes,
	}, actor(c))
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Reserva atualizada com sucesso",
		"reservation": res,
	})
}

// UpdateStatus handles PATCH /api/reservations/:id/status.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.svc.UpdateStatus(ctx, c.Param("id"), strings.TrimSpace(req.Status), actor(c)); err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Status atualizado com sucesso"})
}

// Delete handles DELETE /api/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id"), actor(c)); err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reserva excluída com sucesso"})
}

// History handles GET /api/reservations/:id/history.
func (h *ReservationHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.History(ctx, c.Param("id"))
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"history": list})
}

// Arrivals handles GET /api/reservations/arrivals.
func (h *ReservationHandler) Arrivals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.UpcomingArrivals(ctx)
	if err != nil {
		return fail(c, h.log, err, msgReservationGone)
	}
	return c.JSON(http.StatusOK, echo.Map{"arrivals": list})
}

// parseDate accepts YYYY-MM-DD and also full timestamps as returned by the
// list endpoint, keeping only the calendar day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.Parse(time.DateOnly, s)
}

// actor is the authenticated staff user, if any, for history rows.
func actor(c echo.Context) *uint64 {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}
