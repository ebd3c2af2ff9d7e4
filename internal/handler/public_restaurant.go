package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/availability"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// PublicHandler serves unauthenticated browse and availability endpoints.
type PublicHandler struct {
    Restaurants *repository.RestaurantRepo
    Engine      *availability.Engine
}

func NewPublicHandler(restaurants *repository.RestaurantRepo, engine *availability.Engine) *PublicHandler {
    return &PublicHandler{Restaurants: restaurants, Engine: engine}
}

type seatResp struct {
    SeatNumber  string `json:"seat_number"`
    SeatType    string `json:"seat_type"`
    Capacity    int    `json:"capacity"`
    IsAvailable bool   `json:"is_available"`
    PosX        int    `json:"pos_x"`
    PosY        int    `json:"pos_y"`
}

type restaurantResp struct {
    ID          uint64                    `json:"id"`
    Name        string                    `json:"name"`
    Description string                    `json:"description"`
    Phone       string                    `json:"phone"`
    Email       string                    `json:"email"`
    IsActive    bool                      `json:"is_active"`
    Seats       []seatResp                `json:"seats,omitempty"`
    Hours       map[string]model.DayHours `json:"hours,omitempty"`
}

func restaurantJSON(r *model.Restaurant, detail bool) restaurantResp {
    resp := restaurantResp{
        ID:          r.ID,
        Name:        r.Name,
        Description: r.Description,
        Phone:       r.Phone,
        Email:       r.Email,
        IsActive:    r.IsActive,
    }
    if !detail {
        return resp
    }
    resp.Seats = make([]seatResp, 0, len(r.Seats))
    for i := range r.Seats {
        s := &r.Seats[i]
        resp.Seats = append(resp.Seats, seatResp{
            SeatNumber:  s.SeatNumber,
            SeatType:    s.SeatType,
            Capacity:    s.Capacity(),
            IsAvailable: s.IsAvailable,
            PosX:        s.PosX,
            PosY:        s.PosY,
        })
    }
    resp.Hours = make(map[string]model.DayHours, len(r.Hours))
    for day, h := range r.Hours {
        resp.Hours[strings.ToLower(day.String())] = h
    }
    return resp
}

// ListRestaurants returns active venues with basic pagination.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
    limit, offset := 20, 0
    if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
        limit = v
    }
    if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
        offset = v
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    list, total, err := h.Restaurants.ListActive(ctx, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]restaurantResp, 0, len(list))
    for i := range list {
        out = append(out, restaurantJSON(&list[i], false))
    }
    return c.JSON(http.StatusOK, echo.Map{"restaurants": out, "total": total, "limit": limit, "offset": offset})
}

// GetRestaurant returns one venue with its full seating layout and hours.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    r, err := h.Restaurants.GetByID(ctx, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, restaurantJSON(r, true))
}

// Availability answers the seat-availability query for one restaurant,
// date and time: per-seat status, the free subset, the day's slot grid
// and the next available times.
func (h *PublicHandler) Availability(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    dateStr := c.QueryParam("date")
    timeStr := c.QueryParam("time")
    if dateStr == "" || timeStr == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date and time query params required"})
    }
    date, err := parseDateParam(dateStr)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date must be YYYY-MM-DD"})
    }
    if !model.ValidBookingTime(timeStr) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "time must be HH:MM"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Engine.Query(ctx, id, date, timeStr)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
