package authlib

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultIssuer is the issuer claim stamped on every token we mint
const DefaultIssuer = "authlib"

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
	now        func() time.Time
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService from the given configuration.
// The signing secret, algorithm, and TTLs are fixed at construction so tests
// can run isolated instances with distinct secrets.
func NewTokenService(cfg Config) *TokenServiceImpl {
	issuer := cfg.GetIssuer()
	if issuer == "" {
		issuer = DefaultIssuer
	}

	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		method:     resolveSigningMethod(cfg.GetSigningMethod()),
		issuer:     issuer,
		accessTTL:  time.Duration(cfg.GetAccessTokenTTL()) * time.Minute,
		refreshTTL: time.Duration(cfg.GetRefreshTokenTTL()) * 24 * time.Hour,
		logger:     defLogger{},
		now:        time.Now,
	}
}

func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithClock injects a custom clock (useful for tests)
func (ts *TokenServiceImpl) WithClock(clock func() time.Time) *TokenServiceImpl {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// IssueAccessToken mints a short-lived access token for the given user
func (ts *TokenServiceImpl) IssueAccessToken(userID int64, email string) (string, error) {
	return ts.issue(userID, email, TokenTypeAccess, ts.accessTTL)
}

// IssueRefreshToken mints a refresh token usable only to obtain new access
// tokens
func (ts *TokenServiceImpl) IssueRefreshToken(userID int64, email string) (string, error) {
	return ts.issue(userID, email, TokenTypeRefresh, ts.refreshTTL)
}

func (ts *TokenServiceImpl) issue(userID int64, email string, tokenType TokenType, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", validationError("userId must be a positive number")
	}

	if email == "" {
		return "", validationError("email must not be empty")
	}

	now := ts.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		UserEmail: email,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify cryptographically validates a token's signature, issuer, and
// expiry, returning its claims. Every failure mode collapses into the
// invalid-token kind so callers cannot distinguish expired from forged.
func (ts *TokenServiceImpl) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithIssuer(ts.issuer), jwt.WithTimeFunc(ts.now))

	if err != nil {
		return nil, invalidToken(err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService verify could not decode or validate claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// DecodeUnverified parses claims without checking the signature. It exists
// only to recover the jti/exp/userId of a token being revoked, tokens that
// are already expired or were signed with a rotated secret still decode.
// Never use it to authorize anything.
func (ts *TokenServiceImpl) DecodeUnverified(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, invalidToken(err)
	}
	return claims, nil
}

// invalidToken tags any verification failure as the invalid-token kind while
// keeping the cause in the chain.
func invalidToken(err error) *goerrors.Error {
	return goerrors.Wrap(err, ErrInvalidToken.Category, ErrInvalidToken.Message).
		WithTextCode(ErrInvalidToken.TextCode).
		WithCode(goerrors.CodeUnauthorized)
}

func resolveSigningMethod(name string) jwt.SigningMethod {
	switch name {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}
