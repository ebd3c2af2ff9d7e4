package booking

import (
    "context"
    "errors"
    "sort"
    "testing"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

// ---- in-memory fakes ----

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type memRestaurants struct {
    byID map[uint64]*model.Restaurant
}

func (m *memRestaurants) GetByID(_ context.Context, id uint64) (*model.Restaurant, error) {
    r, ok := m.byID[id]
    if !ok {
        return nil, repository.ErrRestaurantNotFound
    }
    return r, nil
}

func (m *memRestaurants) SetSeatAvailability(_ context.Context, restaurantID uint64, seatNumber string, available bool) error {
    r, ok := m.byID[restaurantID]
    if !ok {
        return repository.ErrRestaurantNotFound
    }
    s := r.FindSeat(seatNumber)
    if s == nil {
        return repository.ErrSeatNotFound
    }
    s.IsAvailable = available
    return nil
}

type memBookings struct {
    nextID uint64
    rows   map[uint64]*model.Booking
}

func newMemBookings() *memBookings { return &memBookings{rows: map[uint64]*model.Booking{}} }

func (m *memBookings) InsertIfSlotFree(_ context.Context, b *model.Booking) error {
    for _, row := range m.rows {
        if row.RestaurantID == b.RestaurantID && row.SeatNumber == b.SeatNumber &&
            row.BookingDate.Equal(b.BookingDate) && row.BookingTime == b.BookingTime && row.IsActive() {
            return repository.ErrSlotTaken
        }
    }
    m.nextID++
    b.ID = m.nextID
    cp := *b
    m.rows[b.ID] = &cp
    return nil
}

func (m *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
    row, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *row
    return &cp, nil
}

func (m *memBookings) UpdateStatusFrom(_ context.Context, b *model.Booking, expected model.BookingStatus) error {
    row, ok := m.rows[b.ID]
    if !ok {
        return repository.ErrBookingNotFound
    }
    if row.Status != expected {
        return repository.ErrStaleStatus
    }
    cp := *b
    m.rows[b.ID] = &cp
    return nil
}

func (m *memBookings) ExpiredConfirmed(_ context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
    out := make([]model.Booking, 0)
    for _, row := range m.rows {
        if row.Status == model.StatusConfirmed && !row.Verified && row.ArrivalDeadline.Before(cutoff) {
            out = append(out, *row)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ArrivalDeadline.Before(out[j].ArrivalDeadline) })
    if len(out) > limit {
        out = out[:limit]
    }
    return out, nil
}

type memPublisher struct{ events []string }

func (p *memPublisher) Publish(_ context.Context, _ uint64, event string, _ interface{}) error {
    p.events = append(p.events, event)
    return nil
}

// ---- fixtures ----

func testRestaurant() *model.Restaurant {
    return &model.Restaurant{
        ID:       1,
        OwnerID:  10,
        Name:     "Trattoria Roma",
        IsActive: true,
        Seats: []model.Seat{
            {SeatNumber: "T1", SeatType: model.SeatTypeTable2, IsAvailable: true},
            {SeatNumber: "T2", SeatType: model.SeatTypeTable4, IsAvailable: true},
            {SeatNumber: "B1", SeatType: model.SeatTypeBar, IsAvailable: true},
        },
        Hours: map[time.Weekday]model.DayHours{},
    }
}

type testEnv struct {
    svc         *Service
    clock       *fakeClock
    restaurants *memRestaurants
    bookings    *memBookings
    pub         *memPublisher
}

func newTestEnv() *testEnv {
    clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
    restaurants := &memRestaurants{byID: map[uint64]*model.Restaurant{1: testRestaurant()}}
    bookings := newMemBookings()
    pub := &memPublisher{}
    return &testEnv{
        svc:         NewService(restaurants, bookings, clock, pub),
        clock:       clock,
        restaurants: restaurants,
        bookings:    bookings,
        pub:         pub,
    }
}

func standardRequest() CreateInput {
    return CreateInput{
        ActingUserID: 42,
        RestaurantID: 1,
        SeatNumber:   "T1",
        PartySize:    2,
        BookingDate:  time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
        BookingTime:  "19:00",
        ContactPhone: "0123456789",
    }
}

// ---- create ----

func TestCreateStandardBooking(t *testing.T) {
    env := newTestEnv()
    b, err := env.svc.Create(context.Background(), standardRequest())
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if b.Status != model.StatusConfirmed {
        t.Fatalf("status = %q, want confirmed", b.Status)
    }
    if b.Verified {
        t.Fatal("standard booking must not start verified")
    }
    want := time.Date(2024, 6, 2, 19, 15, 0, 0, time.UTC)
    if !b.ArrivalDeadline.Equal(want) {
        t.Fatalf("deadline = %v, want %v", b.ArrivalDeadline, want)
    }
    if b.BookingRef == "" {
        t.Fatal("booking ref not generated")
    }
    if b.SeatType != model.SeatTypeTable2 {
        t.Fatalf("seat type = %q, want table-2", b.SeatType)
    }
    if seat := env.restaurants.byID[1].FindSeat("T1"); seat.IsAvailable {
        t.Fatal("seat cache not flipped to unavailable")
    }
    if len(env.pub.events) != 1 || env.pub.events[0] != EventBookingCreated {
        t.Fatalf("events = %v, want [%s]", env.pub.events, EventBookingCreated)
    }
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
    env := newTestEnv()
    if _, err := env.svc.Create(context.Background(), standardRequest()); err != nil {
        t.Fatalf("first create: %v", err)
    }
    req := standardRequest()
    req.ActingUserID = 43
    if _, err := env.svc.Create(context.Background(), req); !errors.Is(err, repository.ErrSlotTaken) {
        t.Fatalf("second create err = %v, want ErrSlotTaken", err)
    }
}

func TestCreateValidation(t *testing.T) {
    cases := []struct {
        name   string
        mutate func(*CreateInput)
    }{
        {"bad time", func(in *CreateInput) { in.BookingTime = "25:99" }},
        {"party too small", func(in *CreateInput) { in.PartySize = 0 }},
        {"party too large", func(in *CreateInput) { in.PartySize = 9 }},
        {"bad phone", func(in *CreateInput) { in.ContactPhone = "12345" }},
        {"unknown seat", func(in *CreateInput) { in.SeatNumber = "T9" }},
        {"party exceeds seat capacity", func(in *CreateInput) { in.PartySize = 4 }}, // T1 is a table-2
        {"past date", func(in *CreateInput) { in.BookingDate = time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC) }},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            env := newTestEnv()
            req := standardRequest()
            tc.mutate(&req)
            _, err := env.svc.Create(context.Background(), req)
            var verr ValidationError
            if !errors.As(err, &verr) {
                t.Fatalf("err = %v, want ValidationError", err)
            }
        })
    }
}

func TestCreateUnknownOrInactiveRestaurant(t *testing.T) {
    env := newTestEnv()
    req := standardRequest()
    req.RestaurantID = 99
    if _, err := env.svc.Create(context.Background(), req); !errors.Is(err, repository.ErrRestaurantNotFound) {
        t.Fatalf("unknown restaurant err = %v, want ErrRestaurantNotFound", err)
    }

    env.restaurants.byID[1].IsActive = false
    if _, err := env.svc.Create(context.Background(), standardRequest()); !errors.Is(err, repository.ErrRestaurantNotFound) {
        t.Fatalf("inactive restaurant err = %v, want ErrRestaurantNotFound", err)
    }
}

func TestCreateWalkIn(t *testing.T) {
    env := newTestEnv()
    req := CreateInput{
        ActingUserID: 7, // staff member seating the customer
        RestaurantID: 1,
        SeatNumber:   "T2",
        PartySize:    3,
        BookingDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
        BookingTime:  "12:00",
        IsWalkIn:     true,
        CustomerName: "Dana Rossi",
    }
    b, err := env.svc.Create(context.Background(), req)
    if err != nil {
        t.Fatalf("create walk-in: %v", err)
    }
    if b.Status != model.StatusArrived || !b.Verified {
        t.Fatalf("walk-in status/verified = %q/%v, want arrived/true", b.Status, b.Verified)
    }
    if b.VerifiedBy == nil || *b.VerifiedBy != 7 {
        t.Fatalf("verifiedBy = %v, want 7", b.VerifiedBy)
    }
    want := env.clock.now.Add(WalkInWindow)
    if !b.ArrivalDeadline.Equal(want) {
        t.Fatalf("walk-in deadline = %v, want %v", b.ArrivalDeadline, want)
    }

    req.CustomerName = ""
    req.SeatNumber = "B1"
    req.PartySize = 1
    if _, err := env.svc.Create(context.Background(), req); err == nil {
        t.Fatal("walk-in without customer name must fail")
    }
}

func TestWalkInBypassesSeatCache(t *testing.T) {
    env := newTestEnv()
    env.restaurants.byID[1].FindSeat("T1").IsAvailable = false

    req := standardRequest()
    if _, err := env.svc.Create(context.Background(), req); !errors.Is(err, repository.ErrSlotTaken) {
        t.Fatalf("standard path err = %v, want ErrSlotTaken fast reject", err)
    }

    req.IsWalkIn = true
    req.CustomerName = "Dana Rossi"
    req.BookingDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    if _, err := env.svc.Create(context.Background(), req); err != nil {
        t.Fatalf("walk-in must bypass the cache, got %v", err)
    }
}

// ---- transitions ----

func mustCreate(t *testing.T, env *testEnv, in CreateInput) *model.Booking {
    t.Helper()
    b, err := env.svc.Create(context.Background(), in)
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    return b
}

func sameDayRequest() CreateInput {
    req := standardRequest()
    req.BookingDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    req.BookingTime = "12:30" // deadline 12:45, clock starts at 12:00
    return req
}

func TestVerifyArrival(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest())

    env.clock.now = time.Date(2024, 6, 1, 12, 40, 0, 0, time.UTC)
    got, err := env.svc.VerifyArrival(context.Background(), b.ID, 7)
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if got.Status != model.StatusArrived || !got.Verified {
        t.Fatalf("status/verified = %q/%v, want arrived/true", got.Status, got.Verified)
    }
    if got.VerifiedBy == nil || *got.VerifiedBy != 7 {
        t.Fatalf("verifiedBy = %v, want 7", got.VerifiedBy)
    }
    if got.ActualArrivalTime == nil || !got.ActualArrivalTime.Equal(env.clock.now) {
        t.Fatalf("actualArrivalTime = %v, want %v", got.ActualArrivalTime, env.clock.now)
    }

    // Verifying again must fail: the booking is already arrived.
    _, err = env.svc.VerifyArrival(context.Background(), b.ID, 7)
    var terr *TransitionError
    if !errors.As(err, &terr) {
        t.Fatalf("second verify err = %v, want TransitionError", err)
    }
    if terr.Current != model.StatusArrived {
        t.Fatalf("TransitionError.Current = %q, want arrived", terr.Current)
    }
}

func TestVerifyAfterDeadlineFails(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest())

    env.clock.now = time.Date(2024, 6, 1, 12, 46, 0, 0, time.UTC)
    _, err := env.svc.VerifyArrival(context.Background(), b.ID, 7)
    var terr *TransitionError
    if !errors.As(err, &terr) {
        t.Fatalf("err = %v, want TransitionError", err)
    }
    if terr.Reason == "" {
        t.Fatal("deadline violation should carry an explicit reason")
    }
}

func TestMarkNoShow(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest())

    got, err := env.svc.MarkNoShow(context.Background(), b.ID)
    if err != nil {
        t.Fatalf("mark no-show: %v", err)
    }
    if got.Status != model.StatusNoShow {
        t.Fatalf("status = %q, want no-show", got.Status)
    }
    if got.CancelReason != "Customer did not arrive within the 15-minute window" {
        t.Fatalf("cancelReason = %q", got.CancelReason)
    }
    if seat := env.restaurants.byID[1].FindSeat("T1"); !seat.IsAvailable {
        t.Fatal("seat not released after no-show")
    }

    if _, err := env.svc.MarkNoShow(context.Background(), b.ID); err == nil {
        t.Fatal("no-show on a terminal booking must fail")
    }
}

func TestCancelAndRebook(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, standardRequest())

    got, err := env.svc.Cancel(context.Background(), b.ID, "change of plans")
    if err != nil {
        t.Fatalf("cancel: %v", err)
    }
    if got.Status != model.StatusCancelled || got.CancelReason != "change of plans" {
        t.Fatalf("status/reason = %q/%q", got.Status, got.CancelReason)
    }
    if seat := env.restaurants.byID[1].FindSeat("T1"); !seat.IsAvailable {
        t.Fatal("seat not released after cancel")
    }

    // The identical slot can be claimed again once the seat is free.
    req := standardRequest()
    req.ActingUserID = 43
    if _, err := env.svc.Create(context.Background(), req); err != nil {
        t.Fatalf("rebooking freed slot: %v", err)
    }

    if _, err := env.svc.Cancel(context.Background(), b.ID, "again"); err == nil {
        t.Fatal("cancelling a cancelled booking must fail")
    }
}

func TestComplete(t *testing.T) {
    env := newTestEnv()
    b := mustCreate(t, env, sameDayRequest())

    if _, err := env.svc.Complete(context.Background(), b.ID); err == nil {
        t.Fatal("completing a confirmed booking must fail")
    }

    env.clock.now = time.Date(2024, 6, 1, 12, 40, 0, 0, time.UTC)
    if _, err := env.svc.VerifyArrival(context.Background(), b.ID, 7); err != nil {
        t.Fatalf("verify: %v", err)
    }
    got, err := env.svc.Complete(context.Background(), b.ID)
    if err != nil {
        t.Fatalf("complete: %v", err)
    }
    if got.Status != model.StatusCompleted {
        t.Fatalf("status = %q, want completed", got.Status)
    }
    if seat := env.restaurants.byID[1].FindSeat("T1"); !seat.IsAvailable {
        t.Fatal("seat not released after completion")
    }
    if _, err := env.svc.Complete(context.Background(), b.ID); err == nil {
        t.Fatal("completing twice must fail")
    }
}

func TestTransitionsOnMissingBooking(t *testing.T) {
    env := newTestEnv()
    if _, err := env.svc.VerifyArrival(context.Background(), 999, 7); !errors.Is(err, repository.ErrBookingNotFound) {
        t.Fatalf("verify err = %v, want ErrBookingNotFound", err)
    }
    if _, err := env.svc.Cancel(context.Background(), 999, "x"); !errors.Is(err, repository.ErrBookingNotFound) {
        t.Fatalf("cancel err = %v, want ErrBookingNotFound", err)
    }
}
