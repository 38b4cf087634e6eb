package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/handler"
	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/router"
	"github.com/iliyamo/pousada-reservation/internal/service"
	"github.com/iliyamo/pousada-reservation/internal/utils"

	service_mocks "github.com/iliyamo/pousada-reservation/internal/handler/mocks"
)

const secret = "router-secret"

type fixture struct {
	e            *echo.Echo
	reservations *service_mocks.MockReservationService
	catalog      *service_mocks.MockCatalogService
	newsletter   *service_mocks.MockNewsletterService
}

func newFixture(t *testing.T, adminRequired bool) fixture {
	t.Helper()
	c := gomock.NewController(t)
	log := zap.NewNop()
	res := service_mocks.NewMockReservationService(c)
	cat := service_mocks.NewMockCatalogService(c)
	news := service_mocks.NewMockNewsletterService(c)
	e := router.New(router.Deps{
		Health:        handler.NewHealthHandler(service_mocks.NewMockPinger(c), "pousada"),
		Auth:          handler.NewAuthHandler(service_mocks.NewMockAuthService(c), log),
		Reservations:  handler.NewReservationHandler(res, log),
		Messages:      handler.NewMessageHandler(service_mocks.NewMockMessageService(c), log),
		Catalog:       handler.NewCatalogHandler(cat, log),
		Newsletter:    handler.NewNewsletterHandler(news, log),
		JWTSecret:     secret,
		AdminRequired: adminRequired,
		FrontendURL:   "http://localhost:3000",
		Log:           log,
	})
	return fixture{e: e, reservations: res, catalog: cat, newsletter: news}
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 1, role+"@pousada.com", role, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func do(e *echo.Echo, method, target, auth, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		r.Header.Set(echo.HeaderAuthorization, auth)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	return w
}

func TestStaffRoutes_RequireToken(t *testing.T) {
	f := newFixture(t, true)
	f.reservations.EXPECT().List(gomock.Any(), repository.ReservationFilter{}).
		Return(service.ListResult{Reservations: []model.Reservation{}}, nil)

	w := do(f.e, http.MethodGet, "/api/reservations", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(f.e, http.MethodGet, "/api/reservations", "Bearer forged", "")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(f.e, http.MethodGet, "/api/reservations", token(t, model.RoleStaff), "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsWrite_AdminOnly(t *testing.T) {
	f := newFixture(t, true)
	f.catalog.EXPECT().SetSetting(gomock.Any(), "contact_phone", "123").Return(nil)

	w := do(f.e, http.MethodPut, "/api/settings/contact_phone", token(t, model.RoleStaff), `{"value":"123"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, `{"error":"Acesso negado"}`, strings.Trim(w.Body.String(), "\n"))

	w = do(f.e, http.MethodPut, "/api/settings/contact_phone", token(t, model.RoleAdmin), `{"value":"123"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStaffRoutes_OpenWhenAuthDisabled(t *testing.T) {
	f := newFixture(t, false)
	f.reservations.EXPECT().Delete(gomock.Any(), "RSV20250001", (*uint64)(nil)).Return(nil)

	w := do(f.e, http.MethodDelete, "/api/reservations/RSV20250001", "", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t, true)
	f.catalog.EXPECT().Rooms(gomock.Any(), (*repository.DateRange)(nil)).Return([]model.Room{}, nil)

	w := do(f.e, http.MethodGet, "/api/rooms", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"rooms":[]}`, strings.Trim(w.Body.String(), "\n"))
	require.NotEmpty(t, w.Header().Get(echo.HeaderXRequestID))

	w = do(f.e, http.MethodGet, "/api", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(f.e, http.MethodGet, "/api/unknown", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"error":"Rota não encontrada","method":"GET","url":"/api/unknown"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestNewsletterRoutes(t *testing.T) {
	f := newFixture(t, true)
	f.newsletter.EXPECT().Subscribe(gomock.Any(), "ana@example.com").
		Return(model.NewsletterSubscription{ID: 1, Email: "ana@example.com"}, nil)
	f.newsletter.EXPECT().List(gomock.Any(), "").Return([]model.NewsletterSubscription{}, nil)

	w := do(f.e, http.MethodPost, "/api/newsletter", "", `{"email":"ana@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(f.e, http.MethodGet, "/api/newsletter", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(f.e, http.MethodGet, "/api/newsletter", token(t, model.RoleStaff), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"subscriptions":[],"total":0}`, strings.Trim(w.Body.String(), "\n"))
}
