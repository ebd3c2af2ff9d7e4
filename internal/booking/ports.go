// Package booking owns the booking lifecycle: creation under the
// double-booking guard, staff verification inside the arrival window, the
// cancel/complete/no-show transitions and the background expiry sweep.
// All collaborators are injected through the small interfaces below so the
// lifecycle logic can be exercised against in-memory fakes.
package booking

import (
    "context"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// Clock supplies the current time.  Every deadline decision goes through
// it so tests can pin time exactly.
type Clock interface {
    Now() time.Time
}

// SystemClock is the production Clock, always in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// RestaurantStore is the slice of restaurant persistence the lifecycle
// needs: loading the venue for validation and flipping the denormalized
// seat availability cache.
type RestaurantStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
    SetSeatAvailability(ctx context.Context, restaurantID uint64, seatNumber string, available bool) error
}

// BookingStore is the booking persistence contract.  InsertIfSlotFree
// must perform the occupancy check and the insert atomically (returning
// repository.ErrSlotTaken on conflict), and UpdateStatusFrom must apply
// the write only while the row still holds the expected status (returning
// repository.ErrStaleStatus otherwise).  Those two conditions are the
// whole concurrency story; no in-process locking is relied upon.
type BookingStore interface {
    InsertIfSlotFree(ctx context.Context, b *model.Booking) error
    GetByID(ctx context.Context, id uint64) (*model.Booking, error)
    UpdateStatusFrom(ctx context.Context, b *model.Booking, expected model.BookingStatus) error
    ExpiredConfirmed(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)
}

// EventPublisher announces booking and seat state changes to external
// listeners, scoped per restaurant.  Publishing is fire-and-forget: the
// lifecycle never fails an operation because an event could not be sent.
type EventPublisher interface {
    Publish(ctx context.Context, restaurantID uint64, event string, payload interface{}) error
}
