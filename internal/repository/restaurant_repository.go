package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
)

// RestaurantRepo provides CRUD operations for restaurants, their seat
// layouts and their per-weekday operating hours.  A restaurant row joins
// child rows in `seats` and `restaurant_hours`; GetByID assembles the
// full aggregate because nearly every caller (booking creation, the
// availability engine) needs the seats and hours together.
type RestaurantRepo struct {
    db *sql.DB
}

// NewRestaurantRepo returns a RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span restaurant and seat writes.
func (r *RestaurantRepo) DB() *sql.DB { return r.db }

// GetByID loads a restaurant with its seats and operating hours.
// ErrRestaurantNotFound is returned when the id does not resolve; callers
// that must reject inactive venues check IsActive themselves, since staff
// and admin views still need to load them.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
    const q = `SELECT id, owner_id, name, description, phone, email, is_active, created_at, updated_at
               FROM restaurants WHERE id = ?`
    var rest model.Restaurant
    var desc sql.NullString
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &rest.ID, &rest.OwnerID, &rest.Name, &desc, &rest.Phone, &rest.Email,
        &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrRestaurantNotFound
    }
    if err != nil {
        return nil, err
    }
    rest.Description = desc.String
    if rest.Seats, err = r.seatsFor(ctx, id); err != nil {
        return nil, err
    }
    if rest.Hours, err = r.hoursFor(ctx, id); err != nil {
        return nil, err
    }
    return &rest, nil
}

func (r *RestaurantRepo) seatsFor(ctx context.Context, restaurantID uint64) ([]model.Seat, error) {
    const q = `SELECT seat_number, seat_type, is_available, pos_x, pos_y
               FROM seats WHERE restaurant_id = ? ORDER BY seat_number`
    rows, err := r.db.QueryContext(ctx, q, restaurantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.SeatNumber, &s.SeatType, &s.IsAvailable, &s.PosX, &s.PosY); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

func (r *RestaurantRepo) hoursFor(ctx context.Context, restaurantID uint64) (map[time.Weekday]model.DayHours, error) {
    const q = `SELECT weekday, open_time, close_time, is_closed
               FROM restaurant_hours WHERE restaurant_id = ?`
    rows, err := r.db.QueryContext(ctx, q, restaurantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    hours := make(map[time.Weekday]model.DayHours, 7)
    for rows.Next() {
        var day int
        var h model.DayHours
        var openStr, closeStr sql.NullString
        if err := rows.Scan(&day, &openStr, &closeStr, &h.IsClosed); err != nil {
            return nil, err
        }
        h.Open = openStr.String
        h.Close = closeStr.String
        hours[time.Weekday(day)] = h
    }
    return hours, rows.Err()
}

// ListActive returns a page of active restaurants, newest first, with the
// total count for pagination.  Seats and hours are not loaded here; list
// views only need the venue summary.
func (r *RestaurantRepo) ListActive(ctx context.Context, limit, offset int) ([]model.Restaurant, int, error) {
    const q = `SELECT id, owner_id, name, description, phone, email, is_active, created_at, updated_at
               FROM restaurants WHERE is_active = 1
               ORDER BY created_at DESC LIMIT ? OFFSET ?`
    rows, err := r.db.QueryContext(ctx, q, limit, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]model.Restaurant, 0)
    for rows.Next() {
        var rest model.Restaurant
        var desc sql.NullString
        if err := rows.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &desc, &rest.Phone, &rest.Email,
            &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
            return nil, 0, err
        }
        rest.Description = desc.String
        out = append(out, rest)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    var total int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants WHERE is_active = 1`).Scan(&total); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// ListByOwner returns all restaurants owned by the given admin user.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Restaurant, error) {
    const q = `SELECT id, owner_id, name, description, phone, email, is_active, created_at, updated_at
               FROM restaurants WHERE owner_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Restaurant, 0)
    for rows.Next() {
        var rest model.Restaurant
        var desc sql.NullString
        if err := rows.Scan(&rest.ID, &rest.OwnerID, &rest.Name, &desc, &rest.Phone, &rest.Email,
            &rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
            return nil, err
        }
        rest.Description = desc.String
        out = append(out, rest)
    }
    return out, rows.Err()
}

// Create inserts a restaurant with its seats and hours in one
// transaction and populates the generated ID on rest.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `INSERT INTO restaurants (owner_id, name, description, phone, email, is_active) VALUES (?, ?, ?, ?, ?, 1)`,
        rest.OwnerID, rest.Name, rest.Description, rest.Phone, rest.Email)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rest.ID = uint64(id)
    if err := replaceSeatsTx(ctx, tx, rest.ID, rest.Seats); err != nil {
        return err
    }
    if err := replaceHoursTx(ctx, tx, rest.ID, rest.Hours); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// UpdateInfo updates the restaurant's basic fields.
func (r *RestaurantRepo) UpdateInfo(ctx context.Context, rest *model.Restaurant) error {
    const q = `UPDATE restaurants SET name = ?, description = ?, phone = ?, email = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, rest.Name, rest.Description, rest.Phone, rest.Email, rest.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetByID(ctx, rest.ID); err != nil {
            return err
        }
    }
    return nil
}

// ReplaceSeats swaps the restaurant's entire seat layout.  Existing seat
// availability caches are discarded; the next availability read derives
// truth from active bookings anyway.
func (r *RestaurantRepo) ReplaceSeats(ctx context.Context, restaurantID uint64, seats []model.Seat) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := replaceSeatsTx(ctx, tx, restaurantID, seats); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ReplaceHours swaps the restaurant's weekly operating hours.
func (r *RestaurantRepo) ReplaceHours(ctx context.Context, restaurantID uint64, hours map[time.Weekday]model.DayHours) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := replaceHoursTx(ctx, tx, restaurantID, hours); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func replaceSeatsTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, seats []model.Seat) error {
    if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE restaurant_id = ?`, restaurantID); err != nil {
        return err
    }
    if len(seats) == 0 {
        return nil
    }
    query := `INSERT INTO seats (restaurant_id, seat_number, seat_type, is_available, pos_x, pos_y) VALUES `
    args := make([]interface{}, 0, len(seats)*6)
    for i, s := range seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?)"
        args = append(args, restaurantID, s.SeatNumber, s.SeatType, s.IsAvailable, s.PosX, s.PosY)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

func replaceHoursTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, hours map[time.Weekday]model.DayHours) error {
    if _, err := tx.ExecContext(ctx, `DELETE FROM restaurant_hours WHERE restaurant_id = ?`, restaurantID); err != nil {
        return err
    }
    if len(hours) == 0 {
        return nil
    }
    query := `INSERT INTO restaurant_hours (restaurant_id, weekday, open_time, close_time, is_closed) VALUES `
    args := make([]interface{}, 0, len(hours)*5)
    first := true
    for day := time.Sunday; day <= time.Saturday; day++ {
        h, ok := hours[day]
        if !ok {
            continue
        }
        if !first {
            query += ","
        }
        first = false
        query += "(?, ?, ?, ?, ?)"
        args = append(args, restaurantID, int(day), h.Open, h.Close, h.IsClosed)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// SetSeatAvailability flips the denormalized availability cache for one
// seat.  This is a best-effort write: booking paths treat a failure here
// as non-fatal because the cache is never the source of truth.
func (r *RestaurantRepo) SetSeatAvailability(ctx context.Context, restaurantID uint64, seatNumber string, available bool) error {
    const q = `UPDATE seats SET is_available = ? WHERE restaurant_id = ? AND seat_number = ?`
    res, err := r.db.ExecContext(ctx, q, available, restaurantID, seatNumber)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the seat is unknown or the flag already held this value;
        // confirm the seat exists so layout bugs surface in logs.
        var one int
        err := r.db.QueryRowContext(ctx,
            `SELECT 1 FROM seats WHERE restaurant_id = ? AND seat_number = ?`,
            restaurantID, seatNumber).Scan(&one)
        if err == sql.ErrNoRows {
            return ErrSeatNotFound
        }
        return err
    }
    return nil
}

// SetActive toggles the venue's active flag.  Deactivated restaurants are
// hidden from browsing and refuse new bookings.
func (r *RestaurantRepo) SetActive(ctx context.Context, restaurantID uint64, active bool) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE restaurants SET is_active = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
        active, restaurantID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetByID(ctx, restaurantID); err != nil {
            return err
        }
    }
    return nil
}
