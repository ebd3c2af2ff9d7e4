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

// CustomerHandler serves booking endpoints for authenticated customers.
type CustomerHandler struct {
    Svc      *booking.Service
    Bookings *repository.BookingRepo
}

func NewCustomerHandler(svc *booking.Service, bookings *repository.BookingRepo) *CustomerHandler {
    return &CustomerHandler{Svc: svc, Bookings: bookings}
}

type createBookingReq struct {
    RestaurantID    uint64 `json:"restaurant_id"`
    SeatNumber      string `json:"seat_number"`
    PartySize       int    `json:"party_size"`
    BookingDate     string `json:"booking_date"` // YYYY-MM-DD
    BookingTime     string `json:"booking_time"` // HH:MM
    SpecialRequests string `json:"special_requests"`
    ContactPhone    string `json:"contact_phone"`
}

type bookingResp struct {
    ID              uint64 `json:"id"`
    BookingRef      string `json:"booking_ref"`
    RestaurantID    uint64 `json:"restaurant_id"`
    UserID          uint64 `json:"user_id"`
    SeatNumber      string `json:"seat_number"`
    SeatType        string `json:"seat_type"`
    PartySize       int    `json:"party_size"`
    BookingDate     string `json:"booking_date"`
    BookingTime     string `json:"booking_time"`
    Status          string `json:"status"`
    ArrivalDeadline string `json:"arrival_deadline"`
    Verified        bool   `json:"verified"`
    SpecialRequests string `json:"special_requests,omitempty"`
    ContactPhone    string `json:"contact_phone,omitempty"`
    CancelReason    string `json:"cancel_reason,omitempty"`
    IsWalkIn        bool   `json:"is_walk_in"`
    CustomerName    string `json:"customer_name,omitempty"`
    CreatedAt       string `json:"created_at"`
}

func bookingJSON(b *model.Booking) bookingResp {
    return bookingResp{
        ID:              b.ID,
        BookingRef:      b.BookingRef,
        RestaurantID:    b.RestaurantID,
        UserID:          b.UserID,
        SeatNumber:      b.SeatNumber,
        SeatType:        b.SeatType,
        PartySize:       b.PartySize,
        BookingDate:     b.BookingDate.Format("2006-01-02"),
        BookingTime:     b.BookingTime,
        Status:          string(b.Status),
        ArrivalDeadline: b.ArrivalDeadline.UTC().Format(time.RFC3339),
        Verified:        b.Verified,
        SpecialRequests: b.SpecialRequests,
        ContactPhone:    b.ContactPhone,
        CancelReason:    b.CancelReason,
        IsWalkIn:        b.IsWalkIn,
        CustomerName:    b.CustomerName,
        CreatedAt:       b.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// Create places a standard advance booking for the authenticated customer.
func (h *CustomerHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
    }
    date, err := parseDateParam(req.BookingDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "booking_date must be YYYY-MM-DD"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    b, err := h.Svc.Create(ctx, booking.CreateInput{
        ActingUserID:    uid,
        RestaurantID:    req.RestaurantID,
        SeatNumber:      strings.TrimSpace(req.SeatNumber),
        PartySize:       req.PartySize,
        BookingDate:     date,
        BookingTime:     req.BookingTime,
        SpecialRequests: req.SpecialRequests,
        ContactPhone:    strings.TrimSpace(req.ContactPhone),
    })
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, bookingJSON(b))
}

// MyBookings lists the customer's own bookings, optionally filtered by
// status, newest first.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    status := strings.TrimSpace(c.QueryParam("status"))
    limit, offset := 20, 0
    if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
        limit = v
    }
    if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
        offset = v
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    list, total, err := h.Bookings.ListByUser(ctx, uid, status, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
    }
    out := make([]bookingResp, 0, len(list))
    for i := range list {
        out = append(out, bookingJSON(&list[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out, "total": total, "limit": limit, "offset": offset})
}

// Get returns one booking owned by the caller.  The id path parameter
// accepts either the numeric id or the booking reference.
func (h *CustomerHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    b, err := h.lookup(ctx, c.Param("id"))
    if err != nil {
        return writeDomainError(c, err)
    }
    if b.UserID != uid {
        // Do not reveal whether the booking exists.
        return writeDomainError(c, repository.ErrBookingNotFound)
    }
    return c.JSON(http.StatusOK, bookingJSON(b))
}

type cancelReq struct {
    Reason string `json:"reason"`
}

// Cancel cancels the caller's own booking and releases its seat.
func (h *CustomerHandler) Cancel(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
    }
    var req cancelReq
    _ = c.Bind(&req)
    reason := strings.TrimSpace(req.Reason)
    if reason == "" {
        reason = "Cancelled by customer"
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    b, err := h.lookup(ctx, c.Param("id"))
    if err != nil {
        return writeDomainError(c, err)
    }
    if b.UserID != uid {
        return writeDomainError(c, repository.ErrBookingNotFound)
    }
    cancelled, err := h.Svc.Cancel(ctx, b.ID, reason)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, bookingJSON(cancelled))
}

// lookup resolves a path id that may be numeric or a booking reference.
func (h *CustomerHandler) lookup(ctx context.Context, raw string) (*model.Booking, error) {
    if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
        return h.Bookings.GetByID(ctx, id)
    }
    return h.Bookings.GetByRef(ctx, raw)
}
