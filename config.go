package authlib

// Config holds the signing configuration consumed by the token service.
// The library never loads configuration itself; callers construct whatever
// satisfies this interface and pass it in.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	// GetAccessTokenTTL is the access token lifetime in minutes.
	GetAccessTokenTTL() int
	// GetRefreshTokenTTL is the refresh token lifetime in days.
	GetRefreshTokenTTL() int
}
