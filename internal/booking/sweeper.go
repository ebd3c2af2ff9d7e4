package booking

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// SweepCancelReason is recorded on bookings cancelled automatically for
// missing the arrival window.
const SweepCancelReason = "No-show - exceeded 15 minute arrival window"

const (
    defaultSweepInterval = time.Minute
    defaultSweepBatch    = 200
)

// Sweeper enforces the arrival SLA in the background: every interval it
// cancels confirmed, unverified bookings whose deadline has passed, using
// the same cancel effect as a manual cancellation.  Ticks run one at a
// time; a slow or failing tick delays the next one instead of overlapping
// with it.
type Sweeper struct {
    svc      *Service
    bookings BookingStore
    clock    Clock
    interval time.Duration
    batch    int
}

// NewSweeper builds a sweeper over the given lifecycle service.  Zero
// interval or batch fall back to one minute and 200 rows per tick.
func NewSweeper(svc *Service, bookings BookingStore, clock Clock, interval time.Duration, batch int) *Sweeper {
    if interval <= 0 {
        interval = defaultSweepInterval
    }
    if batch <= 0 {
        batch = defaultSweepBatch
    }
    return &Sweeper{svc: svc, bookings: bookings, clock: clock, interval: interval, batch: batch}
}

// Run blocks, sweeping on every tick until ctx is cancelled.  Store
// outages are logged and retried on the next tick; they never terminate
// the loop.
func (s *Sweeper) Run(ctx context.Context) {
    log.Printf("[SWEEPER] started interval=%s batch=%d", s.interval, s.batch)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("[SWEEPER] stopped: %v", ctx.Err())
            return
        case <-ticker.C:
            n, err := s.Sweep(ctx)
            if err != nil {
                log.Printf("[SWEEPER] sweep failed: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("[SWEEPER] cancelled %d expired bookings", n)
            }
        }
    }
}

// Sweep performs one pass and returns how many bookings it cancelled.
// Rows another actor already transitioned are skipped silently; other
// per-row failures are logged and do not stop the pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
    expired, err := s.bookings.ExpiredConfirmed(ctx, s.clock.Now(), s.batch)
    if err != nil {
        return 0, err
    }
    n := 0
    for i := range expired {
        b := &expired[i]
        err := s.svc.cancelFrom(ctx, b, model.StatusConfirmed, SweepCancelReason)
        if errors.Is(err, repository.ErrStaleStatus) {
            continue
        }
        if err != nil {
            log.Printf("[SWEEPER] cancel booking=%s failed: %v", b.BookingRef, err)
            continue
        }
        n++
    }
    return n, nil
}
