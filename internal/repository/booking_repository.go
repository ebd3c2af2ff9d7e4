package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// BookingRepo provides persistence for bookings.  All timestamp columns
// are stored in UTC; booking_date is a DATE column holding the calendar
// day at midnight and booking_time is a fixed "HH:MM" string so that a
// slot is identified by the exact (restaurant, seat, date, time) tuple.
//
// The two statements that matter for correctness are InsertIfSlotFree and
// UpdateStatusFrom: the first performs the availability check and the
// insert as one atomic statement so concurrent requests cannot
// double-book, the second linearizes status transitions per booking via a
// conditional update.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const (
    dateFmt     = "2006-01-02"
    datetimeFmt = "2006-01-02 15:04:05"
)

// bookingCols is the column list shared by every SELECT in this file.
const bookingCols = `id, booking_ref, user_id, restaurant_id, verified_by, seat_number, seat_type,
    party_size, booking_date, booking_time, status, arrival_deadline, actual_arrival_time,
    verified, verification_time, special_requests, contact_phone, total_amount_cents,
    payment_status, cancel_reason, notes, is_walk_in, customer_name, created_at, updated_at`

// scanBooking reads one bookings row into a model.Booking.  It accepts
// either *sql.Row or *sql.Rows via the small scanner interface.
type scanner interface {
    Scan(dest ...interface{}) error
}

func scanBooking(s scanner) (*model.Booking, error) {
    var b model.Booking
    var verifiedBy sql.NullInt64
    var arrival, verification sql.NullTime
    var special, cancelReason, notes, customer sql.NullString
    err := s.Scan(
        &b.ID, &b.BookingRef, &b.UserID, &b.RestaurantID, &verifiedBy, &b.SeatNumber, &b.SeatType,
        &b.PartySize, &b.BookingDate, &b.BookingTime, &b.Status, &b.ArrivalDeadline, &arrival,
        &b.Verified, &verification, &special, &b.ContactPhone, &b.TotalAmountCents,
        &b.PaymentStatus, &cancelReason, &notes, &b.IsWalkIn, &customer, &b.CreatedAt, &b.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if verifiedBy.Valid {
        v := uint64(verifiedBy.Int64)
        b.VerifiedBy = &v
    }
    if arrival.Valid {
        t := arrival.Time.UTC()
        b.ActualArrivalTime = &t
    }
    if verification.Valid {
        t := verification.Time.UTC()
        b.VerificationTime = &t
    }
    b.SpecialRequests = special.String
    b.CancelReason = cancelReason.String
    b.Notes = notes.String
    b.CustomerName = customer.String
    b.BookingDate = b.BookingDate.UTC()
    b.ArrivalDeadline = b.ArrivalDeadline.UTC()
    return &b, nil
}

// InsertIfSlotFree inserts the booking only when no active booking
// (confirmed or arrived) already holds the same seat, date and time at
// the same restaurant.  The check and the insert run as a single
// statement so the double-booking guard holds under concurrent requests
// and across multiple service instances sharing the store.  When the slot
// is taken, ErrSlotTaken is returned and the record is not inserted.
// On success the generated ID and DB-side timestamps are populated on b.
func (r *BookingRepo) InsertIfSlotFree(ctx context.Context, b *model.Booking) error {
    const q = `INSERT INTO bookings
        (booking_ref, user_id, restaurant_id, verified_by, seat_number, seat_type, party_size,
         booking_date, booking_time, status, arrival_deadline, actual_arrival_time, verified,
         verification_time, special_requests, contact_phone, total_amount_cents, payment_status,
         is_walk_in, customer_name)
        SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
        FROM DUAL
        WHERE NOT EXISTS (
            SELECT 1 FROM bookings
            WHERE restaurant_id = ? AND seat_number = ? AND booking_date = ? AND booking_time = ?
              AND status IN ('confirmed', 'arrived')
        )`
    var verifiedBy interface{}
    if b.VerifiedBy != nil {
        verifiedBy = *b.VerifiedBy
    }
    var arrival, verification interface{}
    if b.ActualArrivalTime != nil {
        arrival = b.ActualArrivalTime.UTC().Format(datetimeFmt)
    }
    if b.VerificationTime != nil {
        verification = b.VerificationTime.UTC().Format(datetimeFmt)
    }
    date := b.BookingDate.UTC().Format(dateFmt)
    res, err := r.db.ExecContext(ctx, q,
        b.BookingRef, b.UserID, b.RestaurantID, verifiedBy, b.SeatNumber, b.SeatType, b.PartySize,
        date, b.BookingTime, string(b.Status), b.ArrivalDeadline.UTC().Format(datetimeFmt),
        arrival, b.Verified, verification, b.SpecialRequests, b.ContactPhone, b.TotalAmountCents,
        b.PaymentStatus, b.IsWalkIn, b.CustomerName,
        b.RestaurantID, b.SeatNumber, date, b.BookingTime,
    )
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrSlotTaken
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Read the row back to populate DB defaults and timestamps.
    stored, err := r.GetByID(ctx, b.ID)
    if err != nil {
        return err
    }
    *b = *stored
    return nil
}

// GetByID returns a booking by its primary key.  ErrBookingNotFound is
// returned when the id does not resolve.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// GetByRef returns a booking by its human-readable reference.
func (r *BookingRepo) GetByRef(ctx context.Context, ref string) (*model.Booking, error) {
    const q = `SELECT ` + bookingCols + ` FROM bookings WHERE booking_ref = ?`
    b, err := scanBooking(r.db.QueryRowContext(ctx, q, ref))
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    return b, err
}

// UpdateStatusFrom persists the transition fields of b, but only when the
// stored row is still in the expected status.  Concurrent transition
// attempts on the same booking therefore resolve deterministically: the
// loser observes ErrStaleStatus instead of corrupting state.  The caller
// mutates b to the target state before calling.
func (r *BookingRepo) UpdateStatusFrom(ctx context.Context, b *model.Booking, expected model.BookingStatus) error {
    const q = `UPDATE bookings
        SET status = ?, verified = ?, verified_by = ?, verification_time = ?,
            actual_arrival_time = ?, cancel_reason = ?, updated_at = UTC_TIMESTAMP()
        WHERE id = ? AND status = ?`
    var verifiedBy interface{}
    if b.VerifiedBy != nil {
        verifiedBy = *b.VerifiedBy
    }
    var arrival, verification interface{}
    if b.ActualArrivalTime != nil {
        arrival = b.ActualArrivalTime.UTC().Format(datetimeFmt)
    }
    if b.VerificationTime != nil {
        verification = b.VerificationTime.UTC().Format(datetimeFmt)
    }
    res, err := r.db.ExecContext(ctx, q,
        string(b.Status), b.Verified, verifiedBy, verification, arrival, b.CancelReason,
        b.ID, string(expected),
    )
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a missing row from a lost race.
        if _, err := r.GetByID(ctx, b.ID); err != nil {
            return err
        }
        return ErrStaleStatus
    }
    return nil
}

// ActiveSeatNumbers returns the set of seat numbers with an active booking
// (confirmed or arrived) for the exact date and time slot.  This is the
// authoritative occupancy fact the availability engine reads.
func (r *BookingRepo) ActiveSeatNumbers(ctx context.Context, restaurantID uint64, date time.Time, bookingTime string) (map[string]struct{}, error) {
    const q = `SELECT seat_number FROM bookings
        WHERE restaurant_id = ? AND booking_date = ? AND booking_time = ?
          AND status IN ('confirmed', 'arrived')`
    rows, err := r.db.QueryContext(ctx, q, restaurantID, date.UTC().Format(dateFmt), bookingTime)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    occupied := make(map[string]struct{})
    for rows.Next() {
        var seat string
        if err := rows.Scan(&seat); err != nil {
            return nil, err
        }
        occupied[seat] = struct{}{}
    }
    return occupied, rows.Err()
}

// ExpiredConfirmed returns up to limit confirmed, unverified bookings
// whose arrival deadline has passed.  Oldest deadlines come first so a
// backlog drains in order across sweeper ticks.
func (r *BookingRepo) ExpiredConfirmed(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
    const q = `SELECT ` + bookingCols + ` FROM bookings
        WHERE status = 'confirmed' AND verified = 0 AND arrival_deadline < ?
        ORDER BY arrival_deadline ASC
        LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, cutoff.UTC().Format(datetimeFmt), limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// ListByUser returns a page of the user's bookings, newest first, along
// with the total count for pagination.  status filters when non-empty.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, status string, limit, offset int) ([]model.Booking, int, error) {
    q := `SELECT ` + bookingCols + ` FROM bookings WHERE user_id = ?`
    countQ := `SELECT COUNT(*) FROM bookings WHERE user_id = ?`
    args := []interface{}{userID}
    if status != "" {
        q += ` AND status = ?`
        countQ += ` AND status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    var total int
    if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// ListByRestaurant returns a page of a restaurant's bookings ordered by
// booking date and time, with the total count.  date (a calendar day) and
// status filter when set.
func (r *BookingRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, date *time.Time, status string, limit, offset int) ([]model.Booking, int, error) {
    q := `SELECT ` + bookingCols + ` FROM bookings WHERE restaurant_id = ?`
    countQ := `SELECT COUNT(*) FROM bookings WHERE restaurant_id = ?`
    args := []interface{}{restaurantID}
    if date != nil {
        q += ` AND booking_date = ?`
        countQ += ` AND booking_date = ?`
        args = append(args, date.UTC().Format(dateFmt))
    }
    if status != "" {
        q += ` AND status = ?`
        countQ += ` AND status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY booking_date ASC, booking_time ASC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    var total int
    if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// PendingArrivals returns the restaurant's confirmed, unverified bookings
// that are still inside their arrival window, soonest deadline first.
// Staff dashboards poll this to see who must be checked in next.
func (r *BookingRepo) PendingArrivals(ctx context.Context, restaurantID uint64, now time.Time) ([]model.Booking, error) {
    const q = `SELECT ` + bookingCols + ` FROM bookings
        WHERE restaurant_id = ? AND status = 'confirmed' AND verified = 0 AND arrival_deadline >= ?
        ORDER BY arrival_deadline ASC`
    rows, err := r.db.QueryContext(ctx, q, restaurantID, now.UTC().Format(datetimeFmt))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// CountInRange counts the restaurant's bookings with booking_date in
// [from, to).  status and verifiedOnly narrow the count when set.
func (r *BookingRepo) CountInRange(ctx context.Context, restaurantID uint64, from, to time.Time, status string, verifiedOnly bool) (int, error) {
    q := `SELECT COUNT(*) FROM bookings WHERE restaurant_id = ? AND booking_date >= ? AND booking_date < ?`
    args := []interface{}{restaurantID, from.UTC().Format(dateFmt), to.UTC().Format(dateFmt)}
    if status != "" {
        q += ` AND status = ?`
        args = append(args, status)
    }
    if verifiedOnly {
        q += ` AND verified = 1`
    }
    var n int
    err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
    return n, err
}

// CountPendingArrivals counts confirmed, unverified bookings still inside
// their arrival window.
func (r *BookingRepo) CountPendingArrivals(ctx context.Context, restaurantID uint64, now time.Time) (int, error) {
    const q = `SELECT COUNT(*) FROM bookings
        WHERE restaurant_id = ? AND status = 'confirmed' AND verified = 0 AND arrival_deadline >= ?`
    var n int
    err := r.db.QueryRowContext(ctx, q, restaurantID, now.UTC().Format(datetimeFmt)).Scan(&n)
    return n, err
}

// SumRevenue totals total_amount_cents over bookings that showed up
// (arrived or completed) with booking_date in [from, to).
func (r *BookingRepo) SumRevenue(ctx context.Context, restaurantID uint64, from, to time.Time) (uint64, error) {
    const q = `SELECT COALESCE(SUM(total_amount_cents), 0) FROM bookings
        WHERE restaurant_id = ? AND booking_date >= ? AND booking_date < ?
          AND status IN ('arrived', 'completed')`
    var sum uint64
    err := r.db.QueryRowContext(ctx, q, restaurantID,
        from.UTC().Format(dateFmt), to.UTC().Format(dateFmt)).Scan(&sum)
    return sum, err
}
