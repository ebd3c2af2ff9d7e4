package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/handler"
    "github.com/iliyamo/restaurant-seat-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// RegisterAdmin registers venue management endpoints under
// /v1/admin/restaurants.  Only admin accounts may call them; ownership of
// the specific restaurant is enforced inside the handlers.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin/restaurants",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleAdmin),
    )

    g.POST("", h.Create)
    g.GET("", h.Mine)
    g.PUT("/:id", h.Update)
    g.PUT("/:id/seats", h.ReplaceSeats)
    g.PUT("/:id/hours", h.ReplaceHours)
    g.PATCH("/:id/active", h.SetActive)

    // Subadmin staff accounts scoped to one venue.
    g.POST("/:id/staff", h.CreateStaff)
    g.GET("/:id/staff", h.ListStaff)
}
