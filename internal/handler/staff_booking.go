package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-seat-reservation/internal/booking"
    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// StaffHandler serves the front-of-house endpoints used by restaurant
// staff: arrival verification, no-show and completion transitions,
// walk-in seating and the daily dashboard.  Every route is scoped to one
// restaurant; subadmins may only act on the venue their token names and
// admins only on venues they own.
type StaffHandler struct {
    Svc         *booking.Service
    Bookings    *repository.BookingRepo
    Restaurants *repository.RestaurantRepo
}

func NewStaffHandler(svc *booking.Service, bookings *repository.BookingRepo, restaurants *repository.RestaurantRepo) *StaffHandler {
    return &StaffHandler{Svc: svc, Bookings: bookings, Restaurants: restaurants}
}

// authorize checks that the caller may manage the given restaurant.
func (h *StaffHandler) authorize(ctx context.Context, c echo.Context, restaurantID uint64) error {
    switch getRole(c) {
    case model.RoleSubAdmin:
        rid, ok := getScopedRestaurantID(c)
        if !ok || rid != restaurantID {
            return repository.ErrForbidden
        }
        return nil
    case model.RoleAdmin:
        uid, err := getUserID(c)
        if err != nil {
            return repository.ErrForbidden
        }
        r, err := h.Restaurants.GetByID(ctx, restaurantID)
        if err != nil {
            return err
        }
        if r.OwnerID != uid {
            return repository.ErrForbidden
        }
        return nil
    }
    return repository.ErrForbidden
}

// restaurantBooking loads the booking and confirms it belongs to the
// restaurant in the path.
func (h *StaffHandler) restaurantBooking(ctx context.Context, c echo.Context, restaurantID uint64) (*model.Booking, error) {
    bookingID, err := paramID(c, "bookingId")
    if err != nil {
        return nil, booking.ValidationError("invalid booking id")
    }
    b, err := h.Bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.RestaurantID != restaurantID {
        return nil, repository.ErrBookingNotFound
    }
    return b, nil
}

// VerifyArrival confirms the customer showed up inside the 15-minute
// window and seats them.
func (h *StaffHandler) VerifyArrival(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    b, err := h.restaurantBooking(ctx, c, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    verified, err := h.Svc.VerifyArrival(ctx, b.ID, uid)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, bookingJSON(verified))
}

// MarkNoShow records that a confirmed customer never arrived.
func (h *StaffHandler) MarkNoShow(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    b, err := h.restaurantBooking(ctx, c, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    marked, err := h.Svc.MarkNoShow(ctx, b.ID)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, bookingJSON(marked))
}

// Complete closes out an arrived booking when the visit ends.
func (h *StaffHandler) Complete(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    b, err := h.restaurantBooking(ctx, c, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    completed, err := h.Svc.Complete(ctx, b.ID)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, bookingJSON(completed))
}

// Cancel lets staff cancel any booking at their venue with a reason.
func (h *StaffHandler) Cancel(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var req cancelReq
    _ = c.Bind(&req)
    reason := strings.TrimSpace(req.Reason)
    if reason == "" {
        reason = "Cancelled by restaurant"
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    b, err := h.restaurantBooking(ctx, c, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    cancelled, err := h.Svc.Cancel(ctx, b.ID, reason)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, bookingJSON(cancelled))
}

type walkInReq struct {
    SeatNumber      string `json:"seat_number"`
    PartySize       int    `json:"party_size"`
    CustomerName    string `json:"customer_name"`
    ContactPhone    string `json:"contact_phone"`
    SpecialRequests string `json:"special_requests"`
}

// WalkIn seats a customer who is physically present: the booking starts
// arrived and verified by the staff member creating it.
func (h *StaffHandler) WalkIn(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    var req walkInReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    now := time.Now().UTC()
    b, err := h.Svc.Create(ctx, booking.CreateInput{
        ActingUserID:    uid,
        RestaurantID:    restaurantID,
        SeatNumber:      strings.TrimSpace(req.SeatNumber),
        PartySize:       req.PartySize,
        BookingDate:     now,
        BookingTime:     now.Format("15:04"),
        SpecialRequests: req.SpecialRequests,
        ContactPhone:    strings.TrimSpace(req.ContactPhone),
        IsWalkIn:        true,
        CustomerName:    strings.TrimSpace(req.CustomerName),
    })
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, bookingJSON(b))
}

// ListBookings shows the venue's bookings, optionally filtered by date
// and status.
func (h *StaffHandler) ListBookings(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    var date *time.Time
    if s := c.QueryParam("date"); s != "" {
        d, err := parseDateParam(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date must be YYYY-MM-DD"})
        }
        date = &d
    }
    status := strings.TrimSpace(c.QueryParam("status"))
    limit, offset := 50, 0
    if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
        limit = v
    }
    if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
        offset = v
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    list, total, err := h.Bookings.ListByRestaurant(ctx, restaurantID, date, status, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]bookingResp, 0, len(list))
    for i := range list {
        out = append(out, bookingJSON(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out, "total": total, "limit": limit, "offset": offset})
}

// PendingArrivals lists confirmed bookings still inside their arrival
// window, soonest deadline first.  This is the door screen: who staff are
// waiting on right now.
func (h *StaffHandler) PendingArrivals(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }
    list, err := h.Bookings.PendingArrivals(ctx, restaurantID, time.Now().UTC())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]bookingResp, 0, len(list))
    for i := range list {
        out = append(out, bookingJSON(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"pending_arrivals": out})
}

// Stats returns the daily dashboard numbers for one date (today by
// default): bookings by outcome, how many arrivals are still pending and
// revenue from seated visits.
func (h *StaffHandler) Stats(c echo.Context) error {
    restaurantID, err := paramID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid restaurant id"})
    }
    day := time.Now().UTC().Truncate(24 * time.Hour)
    if s := c.QueryParam("date"); s != "" {
        d, err := parseDateParam(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date must be YYYY-MM-DD"})
        }
        day = d
    }
    from, to := day, day.AddDate(0, 0, 1)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if err := h.authorize(ctx, c, restaurantID); err != nil {
        return writeDomainError(c, err)
    }

    total, err := h.Bookings.CountInRange(ctx, restaurantID, from, to, "", false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    arrived, err := h.Bookings.CountInRange(ctx, restaurantID, from, to, string(model.StatusArrived), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    completed, err := h.Bookings.CountInRange(ctx, restaurantID, from, to, string(model.StatusCompleted), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    cancelled, err := h.Bookings.CountInRange(ctx, restaurantID, from, to, string(model.StatusCancelled), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    noShow, err := h.Bookings.CountInRange(ctx, restaurantID, from, to, string(model.StatusNoShow), false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    pending, err := h.Bookings.CountPendingArrivals(ctx, restaurantID, time.Now().UTC())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    revenue, err := h.Bookings.SumRevenue(ctx, restaurantID, from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }

    // Month-to-date figures for the month containing the requested day.
    monthFrom := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
    monthTo := monthFrom.AddDate(0, 1, 0)
    monthTotal, err := h.Bookings.CountInRange(ctx, restaurantID, monthFrom, monthTo, "", false)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    monthRevenue, err := h.Bookings.SumRevenue(ctx, restaurantID, monthFrom, monthTo)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "date":             day.Format("2006-01-02"),
        "total_bookings":   total,
        "arrived":          arrived,
        "completed":        completed,
        "cancelled":        cancelled,
        "no_show":          noShow,
        "pending_arrivals": pending,
        "revenue_cents":    revenue,
        "month": echo.Map{
            "from":           monthFrom.Format("2006-01-02"),
            "total_bookings": monthTotal,
            "revenue_cents":  monthRevenue,
        },
    })
}
