package model

import "time"

// Seat types supported by the seating layout.  Each type implies a fixed
// capacity; the mapping lives in SeatCapacity.
const (
    SeatTypeTable2  = "table-2"
    SeatTypeTable4  = "table-4"
    SeatTypeTable6  = "table-6"
    SeatTypeBar     = "bar"
    SeatTypeCounter = "counter"
)

// SeatCapacity maps a seat type to the number of guests it can hold.
// Unknown types fall back to 2 so a misconfigured layout never reports a
// zero-capacity seat.
func SeatCapacity(seatType string) int {
    switch seatType {
    case SeatTypeTable2:
        return 2
    case SeatTypeTable4:
        return 4
    case SeatTypeTable6:
        return 6
    case SeatTypeBar, SeatTypeCounter:
        return 1
    default:
        return 2
    }
}

// Seat describes a bookable seat or table inside a restaurant.  Seats are
// uniquely identified by their seat number within a restaurant.  The
// IsAvailable flag is a denormalized cache of "not currently holding an
// active booking"; the authoritative availability fact is always a query
// against active bookings for a concrete date and time.
//
// Fields:
//  SeatNumber  – unique label within the restaurant (e.g. "T1", "B3").
//  SeatType    – one of the SeatType* constants.
//  IsAvailable – best-effort availability cache, never a guard on its own.
//  PosX/PosY   – layout coordinates for the floor-plan view.
type Seat struct {
    SeatNumber  string // seats.seat_number
    SeatType    string // seats.seat_type
    IsAvailable bool   // seats.is_available
    PosX        int    // seats.pos_x
    PosY        int    // seats.pos_y
}

// Capacity returns the guest capacity implied by the seat's type.
func (s *Seat) Capacity() int { return SeatCapacity(s.SeatType) }

// DayHours holds the opening window for one weekday in "HH:MM" 24-hour
// strings.  When IsClosed is true (or either time is empty) the restaurant
// takes no bookings that day.
type DayHours struct {
    Open     string `json:"open"`      // restaurant_hours.open_time
    Close    string `json:"close"`     // restaurant_hours.close_time
    IsClosed bool   `json:"is_closed"` // restaurant_hours.is_closed
}

// Restaurant represents a venue with a seating layout and per-weekday
// operating hours.  Each restaurant belongs to one admin owner and may have
// several subadmin staff accounts scoped to it.  This struct corresponds to
// a row in the `restaurants` table plus its `seats` and `restaurant_hours`
// child rows.
type Restaurant struct {
    ID          uint64                    // restaurants.id
    OwnerID     uint64                    // restaurants.owner_id
    Name        string                    // restaurants.name
    Description string                    // restaurants.description
    Phone       string                    // restaurants.phone
    Email       string                    // restaurants.email
    IsActive    bool                      // restaurants.is_active
    Seats       []Seat                    // seats rows for this restaurant
    Hours       map[time.Weekday]DayHours // restaurant_hours rows keyed by weekday
    CreatedAt   time.Time                 // restaurants.created_at
    UpdatedAt   time.Time                 // restaurants.updated_at
}

// FindSeat returns the seat with the given number, or nil when the layout
// has no such seat.
func (r *Restaurant) FindSeat(seatNumber string) *Seat {
    for i := range r.Seats {
        if r.Seats[i].SeatNumber == seatNumber {
            return &r.Seats[i]
        }
    }
    return nil
}

// HoursFor returns the operating hours for the given weekday.  The second
// return value is false when no hours are configured for that day, which
// callers must treat the same as a closed day.
func (r *Restaurant) HoursFor(day time.Weekday) (DayHours, bool) {
    h, ok := r.Hours[day]
    return h, ok
}
