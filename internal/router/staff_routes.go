package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/handler"
    "github.com/iliyamo/restaurant-seat-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// RegisterStaff registers the front-of-house endpoints under
// /v1/staff/restaurants/:id.  Both subadmin staff and admin owners may
// call them; per-venue authorization happens inside the handlers, since
// a subadmin is tied to one restaurant by their token while an admin is
// checked against restaurant ownership.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
    g := e.Group(
        "/v1/staff/restaurants/:id",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleSubAdmin, model.RoleAdmin),
    )

    // Transitions on individual bookings.
    g.POST("/bookings/:bookingId/verify", h.VerifyArrival)
    g.POST("/bookings/:bookingId/no-show", h.MarkNoShow)
    g.POST("/bookings/:bookingId/complete", h.Complete)
    g.POST("/bookings/:bookingId/cancel", h.Cancel)

    // Walk-in customers are seated immediately in arrived state.
    g.POST("/walk-ins", h.WalkIn)

    // Venue views: the full booking list, the door screen of pending
    // arrivals and the daily dashboard.
    g.GET("/bookings", h.ListBookings)
    g.GET("/pending-arrivals", h.PendingArrivals)
    g.GET("/stats", h.Stats)
}
