package booking

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/queue"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// Event names carried on the booking exchange.  Routing is per restaurant;
// these strings identify what happened.
const (
    EventBookingCreated   = "booking-created"
    EventBookingVerified  = "booking-verified"
    EventBookingCancelled = "booking-cancelled"
    EventBookingCompleted = "booking-completed"
    EventBookingNoShow    = "booking-no-show"
)

// noShowReason is the fixed cancel reason recorded when staff mark a
// customer as a no-show.
const noShowReason = "Customer did not arrive within the 15-minute window"

// Service drives the booking lifecycle.  Every transition is guarded by a
// conditional write at the store, so concurrent instances behind a load
// balancer stay correct without any in-process locking.
type Service struct {
    restaurants RestaurantStore
    bookings    BookingStore
    clock       Clock
    publisher   EventPublisher
}

// NewService wires a lifecycle service from its collaborators.  publisher
// may be nil when eventing is disabled.
func NewService(restaurants RestaurantStore, bookings BookingStore, clock Clock, publisher EventPublisher) *Service {
    return &Service{restaurants: restaurants, bookings: bookings, clock: clock, publisher: publisher}
}

// CreateInput carries a booking request into the lifecycle.
//
// Fields:
//  ActingUserID – customer placing the booking, or the staff member for a
//                 walk-in (they also become the verifier).
//  CustomerName – required for walk-ins, who have no account of their own.
type CreateInput struct {
    ActingUserID    uint64
    RestaurantID    uint64
    SeatNumber      string
    PartySize       int
    BookingDate     time.Time
    BookingTime     string
    SpecialRequests string
    ContactPhone    string
    IsWalkIn        bool
    CustomerName    string
}

// Create validates the request against the restaurant's layout, claims the
// slot through the store's atomic conditional insert and records the
// booking.  Standard bookings start confirmed with a 15-minute arrival
// window; walk-ins start arrived and already verified by the creating
// staff member.  A second booking for the same seat, date and time fails
// with repository.ErrSlotTaken.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
    if !model.ValidBookingTime(in.BookingTime) {
        return nil, ValidationError(fmt.Sprintf("booking time %q is not a valid HH:MM time", in.BookingTime))
    }
    if in.PartySize < 1 || in.PartySize > 8 {
        return nil, ValidationError("party size must be between 1 and 8")
    }
    if in.IsWalkIn {
        if strings.TrimSpace(in.CustomerName) == "" {
            return nil, ValidationError("customer name is required for walk-in bookings")
        }
        if in.ContactPhone != "" && !model.ValidPhone(in.ContactPhone) {
            return nil, ValidationError("contact phone must be 10 digits")
        }
    } else if !model.ValidPhone(in.ContactPhone) {
        return nil, ValidationError("contact phone must be 10 digits")
    }

    rest, err := s.restaurants.GetByID(ctx, in.RestaurantID)
    if err != nil {
        return nil, err
    }
    if !rest.IsActive {
        return nil, repository.ErrRestaurantNotFound
    }
    seat := rest.FindSeat(in.SeatNumber)
    if seat == nil {
        return nil, ValidationError(fmt.Sprintf("seat %q does not exist at this restaurant", in.SeatNumber))
    }
    if in.PartySize > seat.Capacity() {
        return nil, ValidationError(fmt.Sprintf("party of %d exceeds seat %q capacity of %d", in.PartySize, seat.SeatNumber, seat.Capacity()))
    }
    // Fast reject off the denormalized cache for advance bookings only.
    // The cache is best-effort; the authoritative occupancy check is the
    // conditional insert below.  Walk-ins skip it because staff are
    // seating a customer right now and know the floor state.
    if !in.IsWalkIn && !seat.IsAvailable {
        return nil, repository.ErrSlotTaken
    }

    now := s.clock.Now()
    day := midnightUTC(in.BookingDate)
    if day.Before(midnightUTC(now)) {
        return nil, ValidationError("booking date is in the past")
    }

    b := &model.Booking{
        BookingRef:      newBookingRef(now),
        UserID:          in.ActingUserID,
        RestaurantID:    in.RestaurantID,
        SeatNumber:      seat.SeatNumber,
        SeatType:        seat.SeatType,
        PartySize:       in.PartySize,
        BookingDate:     day,
        BookingTime:     in.BookingTime,
        SpecialRequests: in.SpecialRequests,
        ContactPhone:    in.ContactPhone,
        PaymentStatus:   model.PaymentPending,
        IsWalkIn:        in.IsWalkIn,
        CustomerName:    in.CustomerName,
    }
    if in.IsWalkIn {
        b.Status = model.StatusArrived
        b.Verified = true
        b.VerifiedBy = &in.ActingUserID
        t := now
        b.VerificationTime = &t
        b.ActualArrivalTime = &t
        b.ArrivalDeadline = now.Add(WalkInWindow)
    } else {
        b.Status = model.StatusConfirmed
        deadline, err := ArrivalDeadline(day, in.BookingTime)
        if err != nil {
            return nil, ValidationError(err.Error())
        }
        b.ArrivalDeadline = deadline
    }

    if err := s.bookings.InsertIfSlotFree(ctx, b); err != nil {
        return nil, err
    }
    s.markSeat(ctx, b.RestaurantID, b.SeatNumber, false)
    s.publish(ctx, b.RestaurantID, EventBookingCreated, b)
    return b, nil
}

// VerifyArrival confirms the customer showed up inside the arrival window.
// Only a confirmed, unverified booking whose deadline has not passed can
// be verified; everything else is an illegal transition.
func (s *Service) VerifyArrival(ctx context.Context, bookingID, verifierID uint64) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    now := s.clock.Now()
    if b.Status != model.StatusConfirmed || b.Verified {
        return nil, &TransitionError{Attempted: "verify", Current: b.Status}
    }
    if now.After(b.ArrivalDeadline) {
        return nil, &TransitionError{Attempted: "verify", Current: b.Status, Reason: "the 15-minute arrival window has closed"}
    }
    b.Status = model.StatusArrived
    b.Verified = true
    b.VerifiedBy = &verifierID
    t := now
    b.VerificationTime = &t
    b.ActualArrivalTime = &t
    if err := s.bookings.UpdateStatusFrom(ctx, b, model.StatusConfirmed); err != nil {
        return nil, err
    }
    s.publish(ctx, b.RestaurantID, EventBookingVerified, b)
    return b, nil
}

// MarkNoShow records that a confirmed customer never arrived.  The seat is
// released and the fixed no-show reason is stored.
func (s *Service) MarkNoShow(ctx context.Context, bookingID uint64) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.StatusConfirmed {
        return nil, &TransitionError{Attempted: "mark no-show on", Current: b.Status}
    }
    b.Status = model.StatusNoShow
    b.CancelReason = noShowReason
    if err := s.bookings.UpdateStatusFrom(ctx, b, model.StatusConfirmed); err != nil {
        return nil, err
    }
    s.markSeat(ctx, b.RestaurantID, b.SeatNumber, true)
    s.publish(ctx, b.RestaurantID, EventBookingNoShow, b)
    return b, nil
}

// Cancel moves a booking to cancelled with the given reason and releases
// its seat.  Cancelled and completed bookings cannot be cancelled again;
// who may cancel which booking is the caller's concern.
func (s *Service) Cancel(ctx context.Context, bookingID uint64, reason string) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Status == model.StatusCancelled || b.Status == model.StatusCompleted {
        return nil, &TransitionError{Attempted: "cancel", Current: b.Status}
    }
    if err := s.cancelFrom(ctx, b, b.Status, reason); err != nil {
        return nil, err
    }
    return b, nil
}

// Complete closes out an arrived booking after the visit ends, releasing
// the seat for the next customer.
func (s *Service) Complete(ctx context.Context, bookingID uint64) (*model.Booking, error) {
    b, err := s.bookings.GetByID(ctx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.Status != model.StatusArrived {
        return nil, &TransitionError{Attempted: "complete", Current: b.Status}
    }
    b.Status = model.StatusCompleted
    if err := s.bookings.UpdateStatusFrom(ctx, b, model.StatusArrived); err != nil {
        return nil, err
    }
    s.markSeat(ctx, b.RestaurantID, b.SeatNumber, true)
    s.publish(ctx, b.RestaurantID, EventBookingCompleted, b)
    return b, nil
}

// cancelFrom applies the shared cancel effect: conditional status write,
// seat release, event.  expected is the status the row must still hold;
// the sweeper relies on repository.ErrStaleStatus surfacing unchanged so
// it can skip rows another actor already transitioned.
func (s *Service) cancelFrom(ctx context.Context, b *model.Booking, expected model.BookingStatus, reason string) error {
    b.Status = model.StatusCancelled
    b.CancelReason = reason
    if err := s.bookings.UpdateStatusFrom(ctx, b, expected); err != nil {
        return err
    }
    s.markSeat(ctx, b.RestaurantID, b.SeatNumber, true)
    s.publish(ctx, b.RestaurantID, EventBookingCancelled, b)
    return nil
}

// markSeat flips the denormalized seat cache and only logs on failure.
// The cache is a read optimization; a failed flip never fails the
// transition that triggered it.
func (s *Service) markSeat(ctx context.Context, restaurantID uint64, seatNumber string, available bool) {
    if err := s.restaurants.SetSeatAvailability(ctx, restaurantID, seatNumber, available); err != nil {
        log.Printf("[BOOKING] seat cache update failed restaurant=%d seat=%s: %v", restaurantID, seatNumber, err)
    }
}

// publish sends a lifecycle event and only logs on failure.
func (s *Service) publish(ctx context.Context, restaurantID uint64, event string, b *model.Booking) {
    if s.publisher == nil {
        return
    }
    ev := queue.BookingEvent{
        Event:        event,
        BookingID:    b.ID,
        BookingRef:   b.BookingRef,
        RestaurantID: b.RestaurantID,
        UserID:       b.UserID,
        SeatNumber:   b.SeatNumber,
        SeatType:     b.SeatType,
        PartySize:    b.PartySize,
        BookingDate:  b.BookingDate.Format("2006-01-02"),
        BookingTime:  b.BookingTime,
        Status:       string(b.Status),
        IsWalkIn:     b.IsWalkIn,
        CancelReason: b.CancelReason,
        OccurredAt:   s.clock.Now().Format(time.RFC3339),
    }
    if err := s.publisher.Publish(ctx, restaurantID, event, ev); err != nil {
        log.Printf("[BOOKING] publish %s failed booking=%s: %v", event, b.BookingRef, err)
    }
}

// midnightUTC strips the time of day so bookings group by calendar date.
func midnightUTC(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newBookingRef builds a customer-facing reference: a fixed tag, the
// booking's creation date and a short random suffix.  Uniqueness is
// ultimately enforced by the store's unique index on booking_ref.
func newBookingRef(now time.Time) string {
    buf := make([]byte, 3)
    if _, err := rand.Read(buf); err != nil {
        return fmt.Sprintf("RST%s-%06d", now.Format("20060102"), now.UnixNano()%1_000_000)
    }
    return fmt.Sprintf("RST%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
