package authlib

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// AuthResponse is returned by Register and Login: the sanitized user
// snapshot plus a freshly issued access/refresh pair.
type AuthResponse struct {
	Success      bool   `json:"success"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Auther orchestrates register, login, refresh, and logout by composing the
// user repository, the password hasher, the token service, and the
// revocation blacklist. It holds no mutable state of its own, all
// coordination state lives in the durable store.
type Auther struct {
	repo   RepositoryManager
	hasher Hasher
	tokens TokenService
	logger Logger
}

// NewAuthenticator returns a new Auther wired against the given
// repositories and signing configuration.
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	return &Auther{
		repo:   repo,
		hasher: NewArgon2Hasher(DefaultArgon2Params),
		tokens: NewTokenService(cfg),
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithHasher overrides the password hasher. Callers running custom argon2
// parameters should install the same hasher on the users repository via
// WithUsersHasher so registration and verification agree.
func (s *Auther) WithHasher(h Hasher) *Auther {
	if h != nil {
		s.hasher = h
	}
	return s
}

// WithTokenService overrides the token service
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokens = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register validates the credentials, creates the account, and issues an
// access/refresh pair. If issuance fails after the account was created we
// surface the failure without rolling the user back, a subsequent login
// recovers the session.
func (s *Auther) Register(ctx context.Context, params RegisterUserParams) (*AuthResponse, error) {
	user, err := s.repo.Users().Register(ctx, params)
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		s.logger.Error("Register issued no tokens for created user", "user_id", user.ID, "error", err)
		return nil, err
	}

	return &AuthResponse{
		Success:      true,
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login verifies the credentials and issues a fresh access/refresh pair.
// An inactive account fails with the same error kind as a wrong password so
// callers cannot probe account state.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		s.logger.Info("Login rejected for deactivated account", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	s.maybeRehash(ctx, user, password)

	if err := s.repo.Users().TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Success:      true,
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyToken validates signature, issuer, and expiry. It deliberately does
// not consult the blacklist, access tokens are short-lived and only the
// refresh path pays the revocation-store round trip.
func (s *Auther) VerifyToken(token string) (*TokenClaims, error) {
	return s.tokens.Verify(token)
}

// RefreshAccessToken mints a new access token off a valid, unrevoked
// refresh token. The refresh token itself is reused, not rotated.
func (s *Auther) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", err
	}

	if !claims.IsRefresh() {
		return "", ErrInvalidToken
	}

	revoked, err := s.repo.TokenBlacklist().IsRevoked(ctx, claims.JTI())
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	return s.tokens.IssueAccessToken(claims.UserID, claims.Email())
}

// Logout revokes both tokens by jti. The tokens are decoded without
// signature verification so an already-expired pair can still be revoked,
// and revocation is idempotent so logging out twice is not an error.
func (s *Auther) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		claims, err := s.tokens.DecodeUnverified(token)
		if err != nil {
			return err
		}

		if err := s.repo.TokenBlacklist().Revoke(ctx, claims.JTI(), claims.UserID, claims.Expires()); err != nil {
			return err
		}
	}

	return nil
}

// ActivateUser re-enables a deactivated account
func (s *Auther) ActivateUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.Users().SetActive(ctx, id, true)
}

// DeactivateUser blocks future logins without deleting the record
func (s *Auther) DeactivateUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.Users().SetActive(ctx, id, false)
}

// MarkUserVerified flags the account email as verified
func (s *Auther) MarkUserVerified(ctx context.Context, id int64) (*User, error) {
	return s.repo.Users().SetVerified(ctx, id, true)
}

func (s *Auther) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.Users().GetByID(ctx, id)
}

func (s *Auther) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.Users().GetByEmail(ctx, email)
}

func (s *Auther) issuePair(user *User) (string, string, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// maybeRehash upgrades a stored hash whose embedded parameters lag the
// hasher's current configuration. Best effort, a failure here never blocks
// the login.
func (s *Auther) maybeRehash(ctx context.Context, user *User, password string) {
	stale, err := s.hasher.NeedsRehash(user.PasswordHash)
	if err != nil || !stale {
		return
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", user.ID, "error", err)
		return
	}

	if err := s.repo.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.logger.Warn("failed to store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}

	user.PasswordHash = hash
}
