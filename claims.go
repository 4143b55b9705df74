package authlib

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access from refresh tokens
type TokenType = string

const (
	// TokenTypeAccess is a short-lived token authorizing resource access
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is a longer-lived token usable only to mint a new
	// access token
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims is the decoded payload of a signed token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64     `json:"userId,omitempty"`
	UserEmail string    `json:"email,omitempty"`
	TokenType TokenType `json:"type,omitempty"`
}

var _ jwt.Claims = (*TokenClaims)(nil)

// JTI returns the unique token identifier used as the revocation key
func (c *TokenClaims) JTI() string {
	return c.RegisteredClaims.ID
}

// Email returns the subject email claim
func (c *TokenClaims) Email() string {
	return c.UserEmail
}

// Type returns the token type claim
func (c *TokenClaims) Type() TokenType {
	return c.TokenType
}

// IsAccess reports whether this payload was minted as an access token
func (c *TokenClaims) IsAccess() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefresh reports whether this payload was minted as a refresh token
func (c *TokenClaims) IsRefresh() bool {
	return c.TokenType == TokenTypeRefresh
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the issued at time
func (c *TokenClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
