package model

import (
	"strings"
	"time"
)

// Roles stored in users.role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account as stored in the `users` table.  The
// profile fields (Name, Phone, Address) are optional at registration and
// must be filled in before the user can request a booking.
//
// Fields:
//
//	ID           – opaque identifier (UUID).
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash of the password.
//	Role         – USER or ADMIN.
//	Name         – display name.
//	Phone        – contact number.
//	Address      – postal address.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ProfileComplete reports whether every profile field has been filled in.
func (u *User) ProfileComplete() bool {
	return strings.TrimSpace(u.Name) != "" &&
		strings.TrimSpace(u.Phone) != "" &&
		strings.TrimSpace(u.Address) != ""
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
