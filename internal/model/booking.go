package model

import (
    "regexp"
    "time"
)

// BookingStatus is the closed set of lifecycle states a booking moves
// through.  A booking holds its seat while the status is confirmed or
// arrived; completed, cancelled and no-show are terminal.
type BookingStatus string

const (
    StatusPending   BookingStatus = "pending" // retained for legacy rows; no code path creates it
    StatusConfirmed BookingStatus = "confirmed"
    StatusArrived   BookingStatus = "arrived"
    StatusCompleted BookingStatus = "completed"
    StatusCancelled BookingStatus = "cancelled"
    StatusNoShow    BookingStatus = "no-show"
)

// Payment states for the stubbed payment field.
const (
    PaymentPending  = "pending"
    PaymentPaid     = "paid"
    PaymentRefunded = "refunded"
)

var (
    timePattern  = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
    phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// ValidBookingTime reports whether s is a valid "HH:MM" 24-hour time.
func ValidBookingTime(s string) bool { return timePattern.MatchString(s) }

// ValidPhone reports whether s is a 10-digit phone number.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// Booking records a customer's claim on one seat for one date and time
// slot.  Rows are never deleted; terminal bookings are retained for audit
// and history.  The arrival deadline is bookingDate@bookingTime + 15
// minutes (walk-ins get creation time + 2 hours) and is computed in exactly
// one place, booking.ArrivalDeadline.
//
// Fields:
//  ID              – store-assigned primary key.
//  BookingRef      – human-readable reference shown to customers.
//  UserID          – customer who owns the booking.
//  RestaurantID    – venue being booked.
//  VerifiedBy      – staff account that confirmed the arrival (nullable).
//  SeatNumber      – seat claimed, unique per restaurant.
//  BookingDate     – calendar day, stored at midnight UTC for grouping.
//  BookingTime     – slot start in "HH:MM".
//  ArrivalDeadline – cutoff after which an unverified booking is swept.
type Booking struct {
    ID                uint64        // bookings.id
    BookingRef        string        // bookings.booking_ref
    UserID            uint64        // bookings.user_id
    RestaurantID      uint64        // bookings.restaurant_id
    VerifiedBy        *uint64       // bookings.verified_by (nullable)
    SeatNumber        string        // bookings.seat_number
    SeatType          string        // bookings.seat_type
    PartySize         int           // bookings.party_size (1..8)
    BookingDate       time.Time     // bookings.booking_date (midnight UTC)
    BookingTime       string        // bookings.booking_time ("HH:MM")
    Status            BookingStatus // bookings.status
    ArrivalDeadline   time.Time     // bookings.arrival_deadline
    ActualArrivalTime *time.Time    // bookings.actual_arrival_time (nullable)
    Verified          bool          // bookings.verified
    VerificationTime  *time.Time    // bookings.verification_time (nullable)
    SpecialRequests   string        // bookings.special_requests
    ContactPhone      string        // bookings.contact_phone (10 digits)
    TotalAmountCents  uint32        // bookings.total_amount_cents
    PaymentStatus     string        // bookings.payment_status
    CancelReason      string        // bookings.cancel_reason
    Notes             string        // bookings.notes
    IsWalkIn          bool          // bookings.is_walk_in
    CustomerName      string        // bookings.customer_name (walk-ins only)
    CreatedAt         time.Time     // bookings.created_at
    UpdatedAt         time.Time     // bookings.updated_at
}

// ActiveStatuses are the statuses under which a booking still holds its
// seat.  The double-booking guard and every availability query filter on
// exactly this set.
var ActiveStatuses = []BookingStatus{StatusConfirmed, StatusArrived}

// IsActive reports whether the booking currently holds its seat.
func (b *Booking) IsActive() bool {
    return b.Status == StatusConfirmed || b.Status == StatusArrived
}

// IsTerminal reports whether the booking is in a final state.
func (b *Booking) IsTerminal() bool {
    switch b.Status {
    case StatusCompleted, StatusCancelled, StatusNoShow:
        return true
    }
    return false
}

// CanBeVerified reports whether staff may still confirm the customer's
// arrival: the booking must be confirmed, unverified and inside its
// arrival window.
func (b *Booking) CanBeVerified(now time.Time) bool {
    return b.Status == StatusConfirmed && !b.Verified && !now.After(b.ArrivalDeadline)
}

// IsExpired reports whether the booking has outlived its arrival deadline
// without being verified.  Expired bookings are picked up by the sweeper.
func (b *Booking) IsExpired(now time.Time) bool {
    return b.Status == StatusConfirmed && !b.Verified && now.After(b.ArrivalDeadline)
}
