package booking

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

func TestSweepCancelsExpiredBookings(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest()) // deadline 12:45

    sw := NewSweeper(env.svc, env.bookings, env.clock, 0, 0)

    // Before the deadline nothing is eligible.
    if n, err := sw.Sweep(context.Background()); err != nil || n != 0 {
        t.Fatalf("early sweep = (%d, %v), want (0, nil)", n, err)
    }

    env.clock.now = time.Date(2024, 6, 1, 12, 46, 0, 0, time.UTC)
    n, err := sw.Sweep(context.Background())
    if err != nil {
        t.Fatalf("sweep: %v", err)
    }
    if n != 1 {
        t.Fatalf("swept %d bookings, want 1", n)
    }

    got, err := env.bookings.GetByID(context.Background(), b.ID)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.Status != model.StatusCancelled {
        t.Fatalf("status = %q, want cancelled", got.Status)
    }
    if got.CancelReason != SweepCancelReason {
        t.Fatalf("cancelReason = %q, want %q", got.CancelReason, SweepCancelReason)
    }
    if seat := env.restaurants.byID[1].FindSeat("T1"); !seat.IsAvailable {
        t.Fatal("seat not released by sweep")
    }

    // A second pass finds nothing; the sweep is idempotent.
    if n, err := sw.Sweep(context.Background()); err != nil || n != 0 {
        t.Fatalf("repeat sweep = (%d, %v), want (0, nil)", n, err)
    }
}

func TestSweepHonoursBatchLimit(t *testing.T) {
    env := newTestEnv()
    times := []string{"12:05", "12:10", "12:15"}
    for i, bt := range times {
        req := sameDayRequest()
        req.SeatNumber = []string{"T1", "T2", "B1"}[i]
        req.PartySize = 1
        req.BookingTime = bt
        mustCreate(t, env, req)
    }
    env.clock.now = time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)

    sw := NewSweeper(env.svc, env.bookings, env.clock, 0, 2)
    if n, err := sw.Sweep(context.Background()); err != nil || n != 2 {
        t.Fatalf("first sweep = (%d, %v), want (2, nil)", n, err)
    }
    if n, err := sw.Sweep(context.Background()); err != nil || n != 1 {
        t.Fatalf("second sweep = (%d, %v), want (1, nil)", n, err)
    }
}

// staleBookings feeds the sweeper an expired snapshot whose backing row a
// concurrent actor has already moved on, forcing the conditional write to
// report a stale status.
type staleBookings struct {
    *memBookings
    snapshot []model.Booking
}

func (s *staleBookings) ExpiredConfirmed(_ context.Context, _ time.Time, _ int) ([]model.Booking, error) {
    return s.snapshot, nil
}

func TestSweepSkipsConcurrentlyTransitionedRows(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest())

    stale := *b // snapshot still says confirmed

    // Staff verify the arrival between the sweeper's query and its write.
    env.clock.now = time.Date(2024, 6, 1, 12, 40, 0, 0, time.UTC)
    if _, err := env.svc.VerifyArrival(context.Background(), b.ID, 7); err != nil {
        t.Fatalf("verify: %v", err)
    }

    store := &staleBookings{memBookings: env.bookings, snapshot: []model.Booking{stale}}
    sw := NewSweeper(env.svc, store, env.clock, 0, 0)
    n, err := sw.Sweep(context.Background())
    if err != nil {
        t.Fatalf("sweep: %v", err)
    }
    if n != 0 {
        t.Fatalf("swept %d bookings, want 0 (row transitioned concurrently)", n)
    }

    got, err := env.bookings.GetByID(context.Background(), b.ID)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if got.Status != model.StatusArrived {
        t.Fatalf("status = %q, want arrived untouched", got.Status)
    }
}

type failingBookings struct{ *memBookings }

var errStoreDown = errors.New("store unavailable")

func (f *failingBookings) ExpiredConfirmed(_ context.Context, _ time.Time, _ int) ([]model.Booking, error) {
    return nil, errStoreDown
}

func TestSweepSurfacesStoreOutage(t *testing.T) {
    env := newTestEnv()
    sw := NewSweeper(env.svc, &failingBookings{env.bookings}, env.clock, 0, 0)
    if _, err := sw.Sweep(context.Background()); !errors.Is(err, errStoreDown) {
        t.Fatalf("err = %v, want store outage surfaced for the loop to log", err)
    }
}

func TestSweeperRunStopsOnContextCancel(t *testing.T) {
    env := newTestEnv()
    sw := NewSweeper(env.svc, env.bookings, env.clock, 5*time.Millisecond, 0)
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        sw.Run(ctx)
        close(done)
    }()
    time.Sleep(20 * time.Millisecond)
    cancel()
    select {
    case <-done:
    case <-time.After(time.Second):
        t.Fatal("Run did not stop after context cancellation")
    }
}
