package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"
)

// TokenRepo persists refresh tokens.  Only SHA-256 hashes of raw tokens
// are stored; validation compares hashes and honours expiry/revocation.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// ErrInvalidRefresh is returned when a refresh token hash is unknown,
// expired or revoked.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// StoreRefresh saves a refresh token hash for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
        userID, tokenHash, expiresAt.UTC().Format(datetimeFmt))
    return err
}

// ValidateRefresh returns the owning user ID when the hash matches an
// unexpired, unrevoked token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
    const q = `SELECT user_id FROM refresh_tokens
               WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
               LIMIT 1`
    var userID uint64
    err := r.DB.QueryRowContext(ctx, q, tokenHash).Scan(&userID)
    if err == sql.ErrNoRows {
        return 0, ErrInvalidRefresh
    }
    if err != nil {
        return 0, err
    }
    return userID, nil
}

// RevokeByHash marks a single refresh token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL",
        tokenHash)
    return err
}

// RevokeAllForUser revokes every active refresh token of a user, logging
// them out of all sessions.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL",
        userID)
    return err
}
