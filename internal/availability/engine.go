// Package availability answers "which seats are free" questions: per-slot
// seat status, the day's slot grid and a forward search for the next free
// times.  Everything here is a pure read over restaurants and bookings;
// the denormalized per-seat cache is never consulted, occupancy always
// comes from active booking rows for the exact date and time.
package availability

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// ErrPastDate rejects availability queries for dates before today; there
// is nothing meaningful to compute for the past.
var ErrPastDate = errors.New("cannot compute availability for a past date")

const (
    slotStepMinutes = 30

    maxNextResults = 10
    maxDaysAhead   = 7
)

// Clock supplies the current time for the past-date guard.
type Clock interface {
    Now() time.Time
}

// RestaurantStore loads the venue whose layout and hours drive the
// computation.
type RestaurantStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// BookingStore reports which seats hold an active booking for an exact
// restaurant, date and time.
type BookingStore interface {
    ActiveSeatNumbers(ctx context.Context, restaurantID uint64, date time.Time, bookingTime string) (map[string]struct{}, error)
}

// SeatStatus is one seat annotated with its derived capacity and whether
// it is free for the queried slot.
type SeatStatus struct {
    SeatNumber string `json:"seatNumber"`
    SeatType   string `json:"seatType"`
    Capacity   int    `json:"capacity"`
    Available  bool   `json:"available"`
}

// NextAvailable is one entry of the forward search: a future slot with at
// least one free seat.
type NextAvailable struct {
    Date           string `json:"date"`
    Time           string `json:"time"`
    AvailableSeats int    `json:"availableSeats"`
    TotalSeats     int    `json:"totalSeats"`
}

// Result is the full availability answer for one restaurant, date and
// time.
type Result struct {
    SeatAvailability   []SeatStatus    `json:"seatAvailability"`
    AvailableSeats     []SeatStatus    `json:"availableSeats"`
    TimeSlots          []string        `json:"timeSlots"`
    NextAvailableTimes []NextAvailable `json:"nextAvailableTimes"`
}

// Engine computes seat availability.
type Engine struct {
    restaurants RestaurantStore
    bookings    BookingStore
    clock       Clock
}

// NewEngine wires an availability engine from its stores.
func NewEngine(restaurants RestaurantStore, bookings BookingStore, clock Clock) *Engine {
    return &Engine{restaurants: restaurants, bookings: bookings, clock: clock}
}

// ComputeAvailability returns the status of every seat in the restaurant
// for the exact date and time.  A seat is unavailable iff an active
// booking (confirmed or arrived) holds it for that slot.
func (e *Engine) ComputeAvailability(ctx context.Context, restaurantID uint64, date time.Time, bookingTime string) ([]SeatStatus, error) {
    if !model.ValidBookingTime(bookingTime) {
        return nil, fmt.Errorf("invalid booking time %q", bookingTime)
    }
    if err := e.checkNotPast(date); err != nil {
        return nil, err
    }
    rest, err := e.restaurants.GetByID(ctx, restaurantID)
    if err != nil {
        return nil, err
    }
    return e.seatStatuses(ctx, rest, date, bookingTime)
}

// Query composes the full availability answer: per-seat status, the free
// subset, the day's slot grid and the next free times starting from the
// queried slot.
func (e *Engine) Query(ctx context.Context, restaurantID uint64, date time.Time, bookingTime string) (*Result, error) {
    if !model.ValidBookingTime(bookingTime) {
        return nil, fmt.Errorf("invalid booking time %q", bookingTime)
    }
    if err := e.checkNotPast(date); err != nil {
        return nil, err
    }
    rest, err := e.restaurants.GetByID(ctx, restaurantID)
    if err != nil {
        return nil, err
    }
    statuses, err := e.seatStatuses(ctx, rest, date, bookingTime)
    if err != nil {
        return nil, err
    }
    free := make([]SeatStatus, 0, len(statuses))
    for _, s := range statuses {
        if s.Available {
            free = append(free, s)
        }
    }
    next, err := e.FindNextAvailableTimes(ctx, rest, date, bookingTime)
    if err != nil {
        return nil, err
    }
    return &Result{
        SeatAvailability:   statuses,
        AvailableSeats:     free,
        TimeSlots:          GenerateTimeSlots(rest, date),
        NextAvailableTimes: next,
    }, nil
}

// FindNextAvailableTimes scans forward day by day from startDate for
// slots with at least one free seat.  On the start day only times
// strictly after startTime count; closed days are skipped entirely.  The
// search stops after maxNextResults entries or maxDaysAhead days.
func (e *Engine) FindNextAvailableTimes(ctx context.Context, rest *model.Restaurant, startDate time.Time, startTime string) ([]NextAvailable, error) {
    startMin, err := minutesOf(startTime)
    if err != nil {
        return nil, err
    }
    total := len(rest.Seats)
    out := make([]NextAvailable, 0, maxNextResults)
    day := midnightUTC(startDate)
    for offset := 0; offset < maxDaysAhead; offset++ {
        date := day.AddDate(0, 0, offset)
        for _, slot := range GenerateTimeSlots(rest, date) {
            if offset == 0 {
                m, err := minutesOf(slot)
                if err != nil {
                    return nil, err
                }
                if m <= startMin {
                    continue
                }
            }
            occupied, err := e.bookings.ActiveSeatNumbers(ctx, rest.ID, date, slot)
            if err != nil {
                return nil, err
            }
            freeSeats := 0
            for i := range rest.Seats {
                if _, taken := occupied[rest.Seats[i].SeatNumber]; !taken {
                    freeSeats++
                }
            }
            if freeSeats == 0 {
                continue
            }
            out = append(out, NextAvailable{
                Date:           date.Format("2006-01-02"),
                Time:           slot,
                AvailableSeats: freeSeats,
                TotalSeats:     total,
            })
            if len(out) == maxNextResults {
                return out, nil
            }
        }
    }
    return out, nil
}

// GenerateTimeSlots builds the half-open 30-minute slot grid for the
// restaurant's operating hours on the given date.  The closing time is
// never a slot: hours 09:00-10:00 yield ["09:00" "09:30"].  Closed or
// unconfigured days yield an empty grid.
func GenerateTimeSlots(rest *model.Restaurant, date time.Time) []string {
    hours, ok := rest.HoursFor(date.UTC().Weekday())
    if !ok || hours.IsClosed || hours.Open == "" || hours.Close == "" {
        return []string{}
    }
    openMin, err := minutesOf(hours.Open)
    if err != nil {
        return []string{}
    }
    closeMin, err := minutesOf(hours.Close)
    if err != nil {
        return []string{}
    }
    slots := make([]string, 0)
    for m := openMin; m < closeMin; m += slotStepMinutes {
        slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
    }
    return slots
}

func (e *Engine) seatStatuses(ctx context.Context, rest *model.Restaurant, date time.Time, bookingTime string) ([]SeatStatus, error) {
    occupied, err := e.bookings.ActiveSeatNumbers(ctx, rest.ID, midnightUTC(date), bookingTime)
    if err != nil {
        return nil, err
    }
    out := make([]SeatStatus, 0, len(rest.Seats))
    for i := range rest.Seats {
        seat := &rest.Seats[i]
        _, taken := occupied[seat.SeatNumber]
        out = append(out, SeatStatus{
            SeatNumber: seat.SeatNumber,
            SeatType:   seat.SeatType,
            Capacity:   seat.Capacity(),
            Available:  !taken,
        })
    }
    return out, nil
}

func (e *Engine) checkNotPast(date time.Time) error {
    if midnightUTC(date).Before(midnightUTC(e.clock.Now())) {
        return ErrPastDate
    }
    return nil
}

func minutesOf(s string) (int, error) {
    t, err := time.Parse("15:04", s)
    if err != nil {
        return 0, fmt.Errorf("parse time %q: %w", s, err)
    }
    return t.Hour()*60 + t.Minute(), nil
}

func midnightUTC(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
