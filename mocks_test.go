package authlib_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	authlib "github.com/goliatone/go-authlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// testConfig implements authlib.Config
type testConfig struct {
	secret     string
	method     string
	issuer     string
	accessTTL  int
	refreshTTL int
}

func (c testConfig) GetSigningKey() string    { return c.secret }
func (c testConfig) GetSigningMethod() string { return c.method }
func (c testConfig) GetIssuer() string        { return c.issuer }
func (c testConfig) GetAccessTokenTTL() int   { return c.accessTTL }
func (c testConfig) GetRefreshTokenTTL() int  { return c.refreshTTL }

func newTestConfig() testConfig {
	return testConfig{
		secret:     "test-signing-key",
		method:     "HS256",
		accessTTL:  15,
		refreshTTL: 7,
	}
}

// fastHasher keeps argon2 cheap enough for test suites with strict timeouts
func fastHasher() *authlib.Argon2Hasher {
	return authlib.NewArgon2Hasher(authlib.Argon2Params{
		Memory:  8 * 1024,
		Time:    1,
		Threads: 1,
	})
}

var testDBCounter atomic.Int64

// newTestDB opens an isolated in-memory SQLite database. A single
// connection serializes writers so concurrent registration tests exercise
// the unique index, not the driver's locking.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:authlib_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, authlib.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestManager(t *testing.T) authlib.RepositoryManager {
	t.Helper()

	db := newTestDB(t)
	return authlib.NewRepositoryManager(db,
		authlib.WithManagerUsers(authlib.NewUsersRepository(db, authlib.WithUsersHasher(fastHasher()))),
	)
}

// MockTokenService implements authlib.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueAccessToken(userID int64, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueRefreshToken(userID int64, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Verify(token string) (*authlib.TokenClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*authlib.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) DecodeUnverified(token string) (*authlib.TokenClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*authlib.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLogger implements authlib.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) { m.Called(format, args) }
func (m *MockLogger) Info(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Warn(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Error(format string, args ...any) { m.Called(format, args) }
