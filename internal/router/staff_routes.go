package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pousada-reservation/internal/middleware"
	"github.com/iliyamo/pousada-reservation/internal/model"
)

// RegisterStaff registers the panel routes. With AdminRequired they need a
// valid token of an admin or staff user; settings changes need admin.
//
// Middleware is attached per route rather than through a sub-group so that
// unknown /api paths still answer 404 instead of 401.
func RegisterStaff(api *echo.Group, d Deps) {
	api.GET("/auth/me", d.Auth.Me, middleware.JWTAuth(d.JWTSecret))

	var staff, admin []echo.MiddlewareFunc
	if d.AdminRequired {
		staff = []echo.MiddlewareFunc{
			middleware.JWTAuth(d.JWTSecret),
			middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
		}
		admin = []echo.MiddlewareFunc{
			middleware.JWTAuth(d.JWTSecret),
			middleware.RequireRole(model.RoleAdmin),
		}
	} else {
		d.Log.Warn("ADMIN_AUTH_REQUIRED=false: staff routes are open without a token")
	}

	api.GET("/reservations", d.Reservations.List, staff...)
	api.GET("/reservations/arrivals", d.Reservations.Arrivals, staff...)
	api.GET("/reservations/:id", d.Reservations.Get, staff...)
	api.GET("/reservations/:id/history", d.Reservations.History, staff...)
	api.PUT("/reservations/:id", d.Reservations.Update, staff...)
	api.PATCH("/reservations/:id/status", d.Reservations.UpdateStatus, staff...)
	api.DELETE("/reservations/:id", d.Reservations.Delete, staff...)

	api.GET("/messages", d.Messages.List, staff...)
	api.PATCH("/messages/:id/read", d.Messages.MarkRead, staff...)

	api.GET("/newsletter", d.Newsletter.List, staff...)
	api.GET("/newsletter/export", d.Newsletter.Export, staff...)

	api.PUT("/settings/:key", d.Catalog.SetSetting, admin...)
}
