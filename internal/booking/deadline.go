package booking

import (
    "fmt"
    "time"
)

const (
    // ArrivalWindow is how long after the booked slot start a customer
    // has to arrive and be verified by staff.
    ArrivalWindow = 15 * time.Minute

    // WalkInWindow is the generous deadline given to walk-in bookings,
    // measured from creation time.  Walk-ins are created already verified
    // so the deadline is informational, but it keeps the column populated
    // for reporting.
    WalkInWindow = 2 * time.Hour
)

// ArrivalDeadline computes the single authoritative arrival cutoff for a
// standard booking: the slot start (bookingDate at bookingTime, UTC) plus
// the arrival window.  Every deadline in the system comes from this
// function or from the walk-in branch in Service.Create; nothing else may
// restate the 15-minute rule.
func ArrivalDeadline(bookingDate time.Time, bookingTime string) (time.Time, error) {
    t, err := time.Parse("15:04", bookingTime)
    if err != nil {
        return time.Time{}, fmt.Errorf("parse booking time %q: %w", bookingTime, err)
    }
    y, m, d := bookingDate.UTC().Date()
    slotStart := time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
    return slotStart.Add(ArrivalWindow), nil
}
