package model

import (
    "testing"
    "time"
)

func TestValidBookingTime(t *testing.T) {
    valid := []string{"00:00", "9:05", "09:05", "19:30", "23:59"}
    for _, s := range valid {
        if !ValidBookingTime(s) {
            t.Errorf("ValidBookingTime(%q) = false, want true", s)
        }
    }
    invalid := []string{"", "24:00", "19:60", "7pm", "1900", "19:5"}
    for _, s := range invalid {
        if ValidBookingTime(s) {
            t.Errorf("ValidBookingTime(%q) = true, want false", s)
        }
    }
}

func TestValidPhone(t *testing.T) {
    if !ValidPhone("0123456789") {
        t.Error("10 digits rejected")
    }
    for _, s := range []string{"", "12345", "01234567890", "01234abcde"} {
        if ValidPhone(s) {
            t.Errorf("ValidPhone(%q) = true, want false", s)
        }
    }
}

func TestSeatCapacity(t *testing.T) {
    cases := map[string]int{
        SeatTypeTable2:  2,
        SeatTypeTable4:  4,
        SeatTypeTable6:  6,
        SeatTypeBar:     1,
        SeatTypeCounter: 1,
        "booth":         2, // unknown types fall back to 2
    }
    for seatType, want := range cases {
        if got := SeatCapacity(seatType); got != want {
            t.Errorf("SeatCapacity(%q) = %d, want %d", seatType, got, want)
        }
    }
}

func TestBookingStatusHelpers(t *testing.T) {
    deadline := time.Date(2024, 6, 1, 19, 15, 0, 0, time.UTC)
    b := Booking{Status: StatusConfirmed, ArrivalDeadline: deadline}

    if !b.IsActive() || b.IsTerminal() {
        t.Fatal("confirmed booking must be active and non-terminal")
    }
    before := deadline.Add(-time.Minute)
    after := deadline.Add(time.Minute)
    if !b.CanBeVerified(before) {
        t.Error("confirmed unverified booking inside the window must be verifiable")
    }
    if !b.CanBeVerified(deadline) {
        t.Error("the deadline instant itself is still inside the window")
    }
    if b.CanBeVerified(after) {
        t.Error("booking past its deadline must not be verifiable")
    }
    if b.IsExpired(before) || !b.IsExpired(after) {
        t.Error("expiry must flip exactly at the deadline")
    }

    b.Verified = true
    if b.CanBeVerified(before) {
        t.Error("already-verified booking must not be verifiable")
    }
    if b.IsExpired(after) {
        t.Error("verified booking never expires")
    }

    for _, st := range []BookingStatus{StatusCompleted, StatusCancelled, StatusNoShow} {
        b := Booking{Status: st}
        if b.IsActive() || !b.IsTerminal() {
            t.Errorf("status %q: want terminal, inactive", st)
        }
    }
}
