package model

import "time"

// Application roles.  Customers book seats, subadmins are restaurant staff
// who verify arrivals, admins own and manage restaurants.
const (
    RoleUser     = "user"
    RoleSubAdmin = "subadmin"
    RoleAdmin    = "admin"
)

// User represents an application account as stored in the `users` table.
// Subadmin accounts are scoped to one restaurant via RestaurantID; for
// customers and admins the field is nil.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of the Role* constants.
//  RestaurantID – restaurant a subadmin is assigned to (nullable).
//  IsActive     – whether the account is active.
type User struct {
    ID           uint64    // users.id
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    RestaurantID *uint64   // users.restaurant_id (nullable)
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
