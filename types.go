package authlib

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface used across the package
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Hasher hashes and verifies passwords
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) error
	NeedsRehash(hash string) (bool, error)
}

// TokenService mints and validates signed bearer tokens
type TokenService interface {
	IssueAccessToken(userID int64, email string) (string, error)
	IssueRefreshToken(userID int64, email string) (string, error)
	Verify(token string) (*TokenClaims, error)
	DecodeUnverified(token string) (*TokenClaims, error)
}

// Blacklist is the durable record of revoked token identifiers
type Blacklist interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHLIB "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHLIB "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHLIB "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHLIB "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
