package booking

import (
    "fmt"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// ValidationError marks malformed caller input: bad time format, party
// size out of range, a seat that is not part of the restaurant's layout.
// Handlers translate it into an HTTP 400 response.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// TransitionError reports an attempt to move a booking out of a status
// that does not allow the requested transition.  The message names the
// current status and the attempted action so staff can see exactly why
// the request was rejected; Reason overrides the default wording for
// guard failures that are not about the status itself (e.g. the arrival
// window having closed).  Handlers translate it into HTTP 400.
type TransitionError struct {
    Attempted string
    Current   model.BookingStatus
    Reason    string
}

func (e *TransitionError) Error() string {
    if e.Reason != "" {
        return fmt.Sprintf("cannot %s booking: %s", e.Attempted, e.Reason)
    }
    return fmt.Sprintf("cannot %s a booking in status %q", e.Attempted, e.Current)
}
