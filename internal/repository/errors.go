// Package repository defines the raw-SQL data access layer and the error
// sentinels reused across repositories.  These sentinel values let the
// handler and service layers distinguish failure scenarios without string
// matching: not-found lookups map to HTTP 404, conflicts (a lost booking
// race or a stale status transition) map to HTTP 409, and ErrForbidden
// maps to HTTP 403.
package repository

import "errors"

// ErrRestaurantNotFound is returned when a restaurant id does not resolve
// or the restaurant has been deactivated.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrBookingNotFound is returned when a booking id or reference does not
// resolve.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a user id does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrSeatNotFound is returned when a seat number is not part of the
// restaurant's layout.
var ErrSeatNotFound = errors.New("seat not found")

// ErrSlotTaken is returned by the conditional booking insert when an
// active booking already holds the same (restaurant, seat, date, time)
// slot.  The caller lost the race; the seat must be offered again.
var ErrSlotTaken = errors.New("seat already booked for this date and time")

// ErrStaleStatus is returned by conditional status updates when the row's
// status no longer matches what the caller observed.  A concurrent actor
// transitioned the booking first.
var ErrStaleStatus = errors.New("booking status changed concurrently")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own or are not scoped to.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering a user with a taken email.
var ErrEmailExists = errors.New("email already exists")
