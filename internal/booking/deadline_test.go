package booking

import (
    "testing"
    "time"
)

func TestArrivalDeadline(t *testing.T) {
    date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    got, err := ArrivalDeadline(date, "19:00")
    if err != nil {
        t.Fatalf("ArrivalDeadline: %v", err)
    }
    want := time.Date(2024, 6, 1, 19, 15, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("deadline = %v, want %v", got, want)
    }
}

func TestArrivalDeadlineIgnoresTimeOfDayOnDate(t *testing.T) {
    // The date may arrive with a stray time-of-day component; only the
    // calendar day counts.
    date := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
    got, err := ArrivalDeadline(date, "09:05")
    if err != nil {
        t.Fatalf("ArrivalDeadline: %v", err)
    }
    want := time.Date(2024, 6, 1, 9, 20, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("deadline = %v, want %v", got, want)
    }
}

func TestArrivalDeadlineRejectsBadTime(t *testing.T) {
    date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
    for _, bad := range []string{"", "7pm", "24:00", "19:60"} {
        if _, err := ArrivalDeadline(date, bad); err == nil {
            t.Errorf("ArrivalDeadline(%q) succeeded, want error", bad)
        }
    }
}
