package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/handler"
    "github.com/iliyamo/restaurant-seat-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the user role.  Customers can place
// bookings, list their own bookings, inspect one booking by id or
// reference, and cancel a booking they own.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleUser),
    )
    // Availability browsing is registered on the public router so guests
    // can check seats before registering.  Customer-specific endpoints
    // begin here.
    g.POST("/bookings", h.Create)
    g.GET("/my-bookings", h.MyBookings)

    // The :id segment accepts either the numeric id or the booking
    // reference shown to the customer.
    g.GET("/bookings/:id", h.Get)
    g.DELETE("/bookings/:id", h.Cancel)
}
