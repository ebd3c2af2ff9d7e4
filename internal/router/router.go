package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/restaurant-seat-reservation/internal/handler"    // import the handlers that implement business logic
    "github.com/iliyamo/restaurant-seat-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"      // role constants used on protected groups
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    // Operations that do not require an existing session: register, login
    // and the two refresh flavours.
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotates the refresh token.
    g.POST("/refresh", a.Refresh)
    // Issues a new access token without rotating the refresh token.
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout accepts a refresh_token body or an Authorization header and
    // does not require the JWT middleware.
    g.POST("/logout", a.Logout)

    // Protected endpoints.  Any authenticated role may read its own
    // identity.
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(model.RoleUser, model.RoleSubAdmin, model.RoleAdmin))
    auth.GET("/me", a.Me)

    // Top-level alias so clients can call either /v1/auth/logout or
    // /v1/logout with a refresh token in the body.
    e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  Guests can
// list venues, inspect a venue's seating layout and hours, and query seat
// availability for a date and time before registering.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
    // Expose the list of active restaurants.
    e.GET("/v1/restaurants", p.ListRestaurants)
    // Venue detail including the seat layout and weekly hours.
    e.GET("/v1/restaurants/:id", p.GetRestaurant)
    // Seat availability for ?date=YYYY-MM-DD&time=HH:MM: per-seat status,
    // free seats, the day's slot grid and the next available times.
    e.GET("/v1/restaurants/:id/availability", p.Availability)
}
