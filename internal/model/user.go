package model

import "time"

// Role values stored in users.role. Handlers must reject anything
// outside this set at the boundary.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleCashier
}

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted because these structs are
// used by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	PasswordHash – bcrypt hashed password.
//	Role         – role name (admin or cashier).
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `db:"id"`            // users.id
	Username     string    `db:"username"`      // users.username
	PasswordHash string    `db:"password_hash"` // users.password_hash
	Role         string    `db:"role"`          // users.role
	CreatedAt    time.Time `db:"created_at"`    // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries an expiry. The plain
// token is never stored; only its SHA-256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    `db:"id"`         // refresh_tokens.id
	UserID    uint64    `db:"user_id"`    // refresh_tokens.user_id
	TokenHash string    `db:"token_hash"` // refresh_tokens.token_hash
	ExpiresAt time.Time `db:"expires_at"` // refresh_tokens.expires_at
	CreatedAt time.Time `db:"created_at"` // refresh_tokens.created_at
}
