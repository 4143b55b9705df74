package authlib

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model. Email uniqueness is enforced by the unique index
// on the table, the application never relies on a read-before-write check.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	IsVerified    bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	LastLogin     *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Sanitized returns a copy safe to hand to callers: same record with the
// password hash cleared.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// TokenBlacklist records a revoked token identifier. We persist the jti
// claim, never the literal bearer token, so a store compromise does not
// leak live credentials. Entries are retained at least until ExpiresAt,
// after which an expired token is already unverifiable and the row is safe
// to garbage-collect.
type TokenBlacklist struct {
	bun.BaseModel `bun:"table:token_blacklist,alias:tkb"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	JTI           string     `bun:"jti,notnull,unique" json:"jti,omitempty"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	RevokedAt     *time.Time `bun:"revoked_at,nullzero,default:current_timestamp" json:"revoked_at,omitempty"`
}
