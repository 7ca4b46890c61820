package model

import "time"

// Operator roles stored in console_users.role and in the JWT "role" claim.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

// ConsoleUser represents an operator account of the admin console as
// stored in the `console_users` table.  These are application logins and
// are unrelated to the MySQL accounts managed through /v1/admin/users.
//
// Fields:
//  ID           – primary key identifier of the operator.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or OPERATOR.
//  IsActive     – inactive operators cannot log in or refresh.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type ConsoleUser struct {
	ID           uint64    // console_users.id
	Email        string    // console_users.email
	PasswordHash string    // console_users.password_hash
	Role         string    // console_users.role
	IsActive     bool      // console_users.is_active
	CreatedAt    time.Time // console_users.created_at
	UpdatedAt    time.Time // console_users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
