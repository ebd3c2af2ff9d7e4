package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/config"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// AdminHandler serves venue management endpoints for restaurant owners:
// creating restaurants, editing the seating layout and operating hours,
// and provisioning subadmin staff accounts.
type AdminHandler struct {
    Cfg         config.Config
    Restaurants *repository.RestaurantRepo
    Users       *repository.UserRepo
}

func NewAdminHandler(cfg config.Config, restaurants *repository.RestaurantRepo, users *repository.UserRepo) *AdminHandler {
    return &AdminHandler{Cfg: cfg, Restaurants: restaurants, Users: users}
}

type seatReq struct {
    SeatNumber string `json:"seat_number"`
    SeatType   string `json:"seat_type"`
    PosX       int    `json:"pos_x"`
    PosY       int    `json:"pos_y"`
}

type restaurantReq struct {
    Name        string                    `json:"name"`
    Description string                    `json:"description"`
    Phone       string                    `json:"phone"`
    Email       string                    `json:"email"`
    Seats       []seatReq                 `json:"seats"`
    Hours       map[string]model.DayHours `json:"hours"`
}

var weekdayNames = map[string]time.Weekday{
    "sunday":    time.Sunday,
    "monday":    time.Monday,
    "tuesday":   time.Tuesday,
    "wednesday": time.Wednesday,
    "thursday":  time.Thursday,
    "friday":    time.Friday,
    "saturday":  time.Saturday,
}

func parseSeats(in []seatReq) ([]model.Seat, string) {
    seen := map[string]bool{}
    out := make([]model.Seat, 0, len(in))
    for _, s := range in {
        num := strings.TrimSpace(s.SeatNumber)
        if num == "" {
            return nil, "seat_number required for every seat"
        }
        if seen[num] {
            return nil, "duplicate seat_number " + num
        }
        seen[num] = true
        out = append(out, model.Seat{
            SeatNumber:  num,
            SeatType:    strings.TrimSpace(s.SeatType),
            IsAvailable: true,
            PosX:        s.PosX,
            PosY:        s.PosY,
        })
    }
    return out, ""
}

func parseHours(in map[string]model.DayHours) (map[time.Weekday]model.DayHours, string) {
    out := make(map[time.Weekday]model.DayHours, len(in))
    for name, h := range in {
        day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
        if !ok {
            return nil, "unknown weekday " + name
        }
        if !h.IsClosed {
            if !model.ValidBookingTime(h.Open) || !model.ValidBookingTime(h.Close) {
                return nil, "open/close must be HH:MM for " + name
            }
        }
        out[day] = h
    }
    return out, ""
}

// owned loads a restaurant and checks the caller owns it.
func (h *AdminHandler) owned(ctx context.Context, c echo.Context, id uint64) (*model.Restaurant, error) {
    uid, err := getUserID(c)
    if err != nil {
        return nil, repository.ErrForbidden
    }
    r, err := h.Restaurants.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if r.OwnerID != uid {
        return nil, repository.ErrForbidden
    }
    return r, nil
}

// Create registers a new restaurant owned by the caller, with its initial
// seating layout and weekly hours.
func (h *AdminHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    var req restaurantReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name required"})
    }
    seats, msg := parseSeats(req.Seats)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msg})
    }
    hours, msg := parseHours(req.Hours)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msg})
    }

    rest := &model.Restaurant{
        OwnerID:     uid,
        Name:        req.Name,
        Description: req.Description,
        Phone:       strings.TrimSpace(req.Phone),
        Email:       strings.ToLower(strings.TrimSpace(req.Email)),
        IsActive:    true,
        Seats:       seats,
        Hours:       hours,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if err := h.Restaurants.Create(ctx, rest); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "create restaurant failed"})
    }
    return c.JSON(http.StatusCreated, restaurantJSON(rest, true))
}

// Mine lists the restaurants owned by the caller.
func (h *AdminHandler) Mine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    list, err := h.Restaurants.ListByOwner(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]restaurantResp, 0, len(list))
    for i := range list {
        out = append(out, restaurantJSON(&list[i], false))
    }
    return c.JSON(http.StatusOK, echo.Map{"restaurants": out})
}

// Update edits a restaurant's descriptive fields.
func (h *AdminHandler) Update(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req restaurantReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    if name := strings.TrimSpace(req.Name); name != "" {
        rest.Name = name
    }
    if req.Description != "" {
        rest.Description = req.Description
    }
    if phone := strings.TrimSpace(req.Phone); phone != "" {
        rest.Phone = phone
    }
    if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
        rest.Email = email
    }
    if err := h.Restaurants.UpdateInfo(ctx, rest); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    return c.JSON(http.StatusOK, restaurantJSON(rest, true))
}

// ReplaceSeats swaps the whole seating layout.  Existing bookings keep
// their seat numbers; layout edits do not rewrite booking history.
func (h *AdminHandler) ReplaceSeats(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req struct {
        Seats []seatReq `json:"seats"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    seats, msg := parseSeats(req.Seats)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    if err := h.Restaurants.ReplaceSeats(ctx, rest.ID, seats); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "replace seats failed"})
    }
    rest.Seats = seats
    return c.JSON(http.StatusOK, restaurantJSON(rest, true))
}

// ReplaceHours swaps the weekly operating hours.
func (h *AdminHandler) ReplaceHours(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req struct {
        Hours map[string]model.DayHours `json:"hours"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    hours, msg := parseHours(req.Hours)
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    if err := h.Restaurants.ReplaceHours(ctx, rest.ID, hours); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "replace hours failed"})
    }
    rest.Hours = hours
    return c.JSON(http.StatusOK, restaurantJSON(rest, true))
}

// SetActive toggles whether the restaurant takes bookings.
func (h *AdminHandler) SetActive(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req struct {
        IsActive *bool `json:"is_active"`
    }
    if err := c.Bind(&req); err != nil || req.IsActive == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "is_active required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    if err := h.Restaurants.SetActive(ctx, rest.ID, *req.IsActive); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "update failed"})
    }
    rest.IsActive = *req.IsActive
    return c.JSON(http.StatusOK, restaurantJSON(rest, false))
}

type createStaffReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
}

// CreateStaff provisions a subadmin account scoped to the restaurant.
func (h *AdminHandler) CreateStaff(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req createStaffReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name/email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleSubAdmin, &rest.ID, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrEmailExists {
            return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "create staff failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "id":            uid,
        "name":          req.Name,
        "email":         req.Email,
        "role":          model.RoleSubAdmin,
        "restaurant_id": rest.ID,
    })
}

// ListStaff returns the subadmin accounts assigned to the restaurant.
func (h *AdminHandler) ListStaff(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rest, err := h.owned(ctx, c, id)
    if err != nil {
        return writeDomainError(c, err)
    }
    staff, err := h.Users.ListSubAdmins(ctx, rest.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]echo.Map, 0, len(staff))
    for _, u := range staff {
        out = append(out, echo.Map{"id": u.ID, "name": u.Name, "email": u.Email, "is_active": u.IsActive})
    }
    return c.JSON(http.StatusOK, echo.Map{"staff": out})
}
