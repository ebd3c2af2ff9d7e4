package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/restaurant-seat-reservation/internal/model"
    "github.com/iliyamo/restaurant-seat-reservation/internal/utils"
)

// UserRepo provides persistence for user accounts.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, name, email, password_hash, role, restaurant_id, is_active, created_at, updated_at`

func scanUser(s scanner) (model.User, error) {
    var u model.User
    var restaurantID sql.NullInt64
    err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
        &restaurantID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return model.User{}, err
    }
    if restaurantID.Valid {
        rid := uint64(restaurantID.Int64)
        u.RestaurantID = &rid
    }
    return u, nil
}

// Create inserts a user and returns its ID.  restaurantID is non-nil only
// for subadmin accounts, which are scoped to one venue.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role string, restaurantID *uint64, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    var rid interface{}
    if restaurantID != nil {
        rid = *restaurantID
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, password_hash, role, restaurant_id) VALUES (?,?,?,?,?)",
        name, email, hash, role, rid)
    if err != nil {
        // 1062 is MySQL's duplicate-key error; the only unique key is email.
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    const q = `SELECT ` + userCols + ` FROM users WHERE email = ? LIMIT 1`
    return scanUser(r.DB.QueryRowContext(ctx, q, email))
}

// GetByID fetches a user by primary key.  ErrUserNotFound is returned
// when the id does not resolve.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    const q = `SELECT ` + userCols + ` FROM users WHERE id = ? LIMIT 1`
    u, err := scanUser(r.DB.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.User{}, ErrUserNotFound
    }
    return u, err
}

// AssignRestaurant scopes a subadmin account to a restaurant.
func (r *UserRepo) AssignRestaurant(ctx context.Context, userID, restaurantID uint64) error {
    const q = `UPDATE users SET restaurant_id = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND role = 'subadmin'`
    res, err := r.DB.ExecContext(ctx, q, restaurantID, userID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        if _, err := r.GetByID(ctx, userID); err != nil {
            return err
        }
    }
    return nil
}

// ListSubAdmins returns the staff accounts assigned to a restaurant.
func (r *UserRepo) ListSubAdmins(ctx context.Context, restaurantID uint64) ([]model.User, error) {
    const q = `SELECT ` + userCols + ` FROM users WHERE role = 'subadmin' AND restaurant_id = ? ORDER BY created_at`
    rows, err := r.DB.QueryContext(ctx, q, restaurantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.User, 0)
    for rows.Next() {
        u, err := scanUser(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    return out, rows.Err()
}
