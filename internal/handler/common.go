package handler // handler defines http handlers

import (
    "errors"   // errors provides sentinel values and As/Is matching
    "net/http" // HTTP status codes
    "strconv"  // strconv converts strings to numeric types
    "time"     // date parsing for query parameters

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/restaurant-seat-reservation/internal/availability"
    "github.com/iliyamo/restaurant-seat-reservation/internal/booking"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

const dbTimeout = 5 * time.Second

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // JWT numeric claims decode as float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware, or "".
func getRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// getScopedRestaurantID returns the restaurant a subadmin token is scoped
// to.  Admin and customer tokens carry no scope and yield (0, false).
func getScopedRestaurantID(c echo.Context) (uint64, bool) {
    switch t := c.Get("restaurant_id").(type) {
    case uint64:
        return t, true
    case float64:
        return uint64(t), true
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, true
        }
    }
    return 0, false
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// parseDateParam parses a YYYY-MM-DD value into midnight UTC.
func parseDateParam(s string) (time.Time, error) {
    return time.Parse("2006-01-02", s)
}

// writeDomainError maps domain and repository errors onto HTTP responses.
// Not-found sentinels become 404, the two conflict sentinels become 409
// with a caller-actionable message, validation and transition failures
// become 400 and everything else is a 500.
func writeDomainError(c echo.Context, err error) error {
    var verr booking.ValidationError
    var terr *booking.TransitionError
    switch {
    case errors.Is(err, repository.ErrRestaurantNotFound),
        errors.Is(err, repository.ErrBookingNotFound),
        errors.Is(err, repository.ErrSeatNotFound),
        errors.Is(err, repository.ErrUserNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
    case errors.Is(err, repository.ErrSlotTaken):
        return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "seat just became unavailable, pick another"})
    case errors.Is(err, repository.ErrStaleStatus):
        return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "booking changed concurrently, reload and retry"})
    case errors.Is(err, availability.ErrPastDate):
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
    case errors.As(err, &verr), errors.As(err, &terr):
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
}
