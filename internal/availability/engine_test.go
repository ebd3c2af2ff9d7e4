package availability

import (
    "context"
    "errors"
    "reflect"
    "testing"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type memRestaurants map[uint64]*model.Restaurant

func (m memRestaurants) GetByID(_ context.Context, id uint64) (*model.Restaurant, error) {
    r, ok := m[id]
    if !ok {
        return nil, repository.ErrRestaurantNotFound
    }
    return r, nil
}

// occupancyFunc lets each test script exactly which seats are taken for a
// given date and slot.
type occupancyFunc func(restaurantID uint64, date time.Time, slot string) map[string]struct{}

func (f occupancyFunc) ActiveSeatNumbers(_ context.Context, restaurantID uint64, date time.Time, slot string) (map[string]struct{}, error) {
    return f(restaurantID, date, slot), nil
}

func noOccupancy(_ uint64, _ time.Time, _ string) map[string]struct{} {
    return map[string]struct{}{}
}

func eveningRestaurant() *model.Restaurant {
    hours := map[time.Weekday]model.DayHours{}
    for d := time.Sunday; d <= time.Saturday; d++ {
        hours[d] = model.DayHours{Open: "18:00", Close: "20:00"}
    }
    return &model.Restaurant{
        ID:       1,
        Name:     "Trattoria Roma",
        IsActive: true,
        Seats: []model.Seat{
            {SeatNumber: "T1", SeatType: model.SeatTypeTable2, IsAvailable: true},
            {SeatNumber: "T2", SeatType: model.SeatTypeTable4, IsAvailable: true},
        },
        Hours: hours,
    }
}

func newEngine(rest *model.Restaurant, occ occupancyFunc) (*Engine, *fakeClock) {
    clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
    return NewEngine(memRestaurants{rest.ID: rest}, occ, clock), clock
}

func TestGenerateTimeSlots(t *testing.T) {
    rest := eveningRestaurant()
    saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    got := GenerateTimeSlots(rest, saturday)
    want := []string{"18:00", "18:30", "19:00", "19:30"}
    if !reflect.DeepEqual(got, want) {
        t.Fatalf("slots = %v, want %v", got, want)
    }

    rest.Hours[time.Saturday] = model.DayHours{Open: "09:00", Close: "10:00"}
    got = GenerateTimeSlots(rest, saturday)
    want = []string{"09:00", "09:30"}
    if !reflect.DeepEqual(got, want) {
        t.Fatalf("slots = %v, want %v (closing time is never a slot)", got, want)
    }

    rest.Hours[time.Saturday] = model.DayHours{Open: "18:00", Close: "20:00", IsClosed: true}
    if got := GenerateTimeSlots(rest, saturday); len(got) != 0 {
        t.Fatalf("closed day slots = %v, want none", got)
    }

    delete(rest.Hours, time.Saturday)
    if got := GenerateTimeSlots(rest, saturday); len(got) != 0 {
        t.Fatalf("unconfigured day slots = %v, want none", got)
    }
}

func TestComputeAvailability(t *testing.T) {
    rest := eveningRestaurant()
    occ := occupancyFunc(func(_ uint64, _ time.Time, slot string) map[string]struct{} {
        if slot == "19:00" {
            return map[string]struct{}{"T1": {}}
        }
        return map[string]struct{}{}
    })
    eng, _ := newEngine(rest, occ)
    date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    statuses, err := eng.ComputeAvailability(context.Background(), 1, date, "19:00")
    if err != nil {
        t.Fatalf("compute: %v", err)
    }
    want := []SeatStatus{
        {SeatNumber: "T1", SeatType: model.SeatTypeTable2, Capacity: 2, Available: false},
        {SeatNumber: "T2", SeatType: model.SeatTypeTable4, Capacity: 4, Available: true},
    }
    if !reflect.DeepEqual(statuses, want) {
        t.Fatalf("statuses = %+v, want %+v", statuses, want)
    }

    statuses, err = eng.ComputeAvailability(context.Background(), 1, date, "18:00")
    if err != nil {
        t.Fatalf("compute: %v", err)
    }
    for _, s := range statuses {
        if !s.Available {
            t.Fatalf("seat %s unavailable at a free slot", s.SeatNumber)
        }
    }
}

func TestComputeAvailabilityRejectsPastDate(t *testing.T) {
    eng, _ := newEngine(eveningRestaurant(), noOccupancy)
    past := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
    if _, err := eng.ComputeAvailability(context.Background(), 1, past, "19:00"); !errors.Is(err, ErrPastDate) {
        t.Fatalf("err = %v, want ErrPastDate", err)
    }
}

func TestComputeAvailabilityRejectsBadInput(t *testing.T) {
    eng, _ := newEngine(eveningRestaurant(), noOccupancy)
    date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    if _, err := eng.ComputeAvailability(context.Background(), 1, date, "7pm"); err == nil {
        t.Fatal("invalid time accepted")
    }
    if _, err := eng.ComputeAvailability(context.Background(), 9, date, "19:00"); !errors.Is(err, repository.ErrRestaurantNotFound) {
        t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
    }
}

func TestFindNextSkipsStartTimeAndEarlier(t *testing.T) {
    rest := eveningRestaurant()
    eng, _ := newEngine(rest, noOccupancy)
    start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    got, err := eng.FindNextAvailableTimes(context.Background(), rest, start, "18:30")
    if err != nil {
        t.Fatalf("find: %v", err)
    }
    if len(got) == 0 {
        t.Fatal("no results")
    }
    if got[0].Date != "2024-06-01" || got[0].Time != "19:00" {
        t.Fatalf("first = %s %s, want 2024-06-01 19:00 (start day strictly after start time)", got[0].Date, got[0].Time)
    }
    if got[1].Time != "19:30" || got[2].Date != "2024-06-02" || got[2].Time != "18:00" {
        t.Fatalf("unexpected ordering: %+v", got[:3])
    }
}

func TestFindNextSkipsFullAndClosedDays(t *testing.T) {
    rest := eveningRestaurant()
    // Monday 2024-06-03 is closed; 06-01 and 06-02 are fully booked.
    rest.Hours[time.Monday] = model.DayHours{IsClosed: true}
    cutoff := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
    occ := occupancyFunc(func(_ uint64, date time.Time, _ string) map[string]struct{} {
        if date.Before(cutoff) {
            return map[string]struct{}{"T1": {}, "T2": {}}
        }
        return map[string]struct{}{}
    })
    eng, _ := newEngine(rest, occ)
    start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    got, err := eng.FindNextAvailableTimes(context.Background(), rest, start, "18:00")
    if err != nil {
        t.Fatalf("find: %v", err)
    }
    if len(got) != maxNextResults {
        t.Fatalf("len = %d, want capped at %d", len(got), maxNextResults)
    }
    if got[0].Date != "2024-06-04" || got[0].Time != "18:00" {
        t.Fatalf("first = %s %s, want 2024-06-04 18:00", got[0].Date, got[0].Time)
    }
    for _, n := range got {
        if n.Date < "2024-06-04" {
            t.Fatalf("entry %s %s precedes the first free day", n.Date, n.Time)
        }
        if n.AvailableSeats != 2 || n.TotalSeats != 2 {
            t.Fatalf("entry %+v: want 2/2 seats free", n)
        }
    }
}

func TestFindNextStopsAtHorizon(t *testing.T) {
    rest := eveningRestaurant()
    occ := occupancyFunc(func(_ uint64, _ time.Time, _ string) map[string]struct{} {
        return map[string]struct{}{"T1": {}, "T2": {}} // nothing ever free
    })
    eng, _ := newEngine(rest, occ)
    start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    got, err := eng.FindNextAvailableTimes(context.Background(), rest, start, "18:00")
    if err != nil {
        t.Fatalf("find: %v", err)
    }
    if len(got) != 0 {
        t.Fatalf("results = %+v, want none inside the %d-day horizon", got, maxDaysAhead)
    }
}

func TestQueryShape(t *testing.T) {
    rest := eveningRestaurant()
    occ := occupancyFunc(func(_ uint64, _ time.Time, slot string) map[string]struct{} {
        if slot == "19:00" {
            return map[string]struct{}{"T1": {}}
        }
        return map[string]struct{}{}
    })
    eng, _ := newEngine(rest, occ)
    date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

    res, err := eng.Query(context.Background(), 1, date, "19:00")
    if err != nil {
        t.Fatalf("query: %v", err)
    }
    if len(res.SeatAvailability) != 2 {
        t.Fatalf("seatAvailability len = %d, want 2", len(res.SeatAvailability))
    }
    if len(res.AvailableSeats) != 1 || res.AvailableSeats[0].SeatNumber != "T2" {
        t.Fatalf("availableSeats = %+v, want just T2", res.AvailableSeats)
    }
    if want := []string{"18:00", "18:30", "19:00", "19:30"}; !reflect.DeepEqual(res.TimeSlots, want) {
        t.Fatalf("timeSlots = %v, want %v", res.TimeSlots, want)
    }
    if len(res.NextAvailableTimes) == 0 || res.NextAvailableTimes[0].Time != "19:30" {
        t.Fatalf("nextAvailableTimes = %+v, want 19:30 first", res.NextAvailableTimes)
    }
}
