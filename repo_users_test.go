package authlib_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	authlib "github.com/goliatone/go-authlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsers(t *testing.T) authlib.Users {
	t.Helper()
	return authlib.NewUsersRepository(newTestDB(t), authlib.WithUsersHasher(fastHasher()))
}

// gateHasher holds every Hash call at a barrier so concurrent registrations
// all pass the optimistic email lookup before any row lands.
type gateHasher struct {
	authlib.Hasher
	gate *sync.WaitGroup
}

func (h *gateHasher) Hash(password string) (string, error) {
	h.gate.Done()
	h.gate.Wait()
	return h.Hasher.Hash(password)
}

func TestUsersRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with defaults", func(t *testing.T) {
		repo := newTestUsers(t)

		user, err := repo.Register(ctx, authlib.RegisterUserParams{
			Email:     "a@b.com",
			Password:  "Secure1!",
			FirstName: "A",
			LastName:  "B",
		})
		require.NoError(t, err)

		assert.Greater(t, user.ID, int64(0))
		assert.Equal(t, "a@b.com", user.Email)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsVerified)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Secure1!", user.PasswordHash)
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		repo := newTestUsers(t)

		_, err := repo.Register(ctx, authlib.RegisterUserParams{
			Email: "a@b.com", Password: "Secure1!", FirstName: "A", LastName: "B",
		})
		require.NoError(t, err)

		_, err = repo.Register(ctx, authlib.RegisterUserParams{
			Email: "a@b.com", Password: "Other22@", FirstName: "C", LastName: "D",
		})
		assert.ErrorIs(t, err, authlib.ErrUserAlreadyExists)
	})

	t.Run("rejects invalid input before touching storage", func(t *testing.T) {
		repo := newTestUsers(t)

		_, err := repo.Register(ctx, authlib.RegisterUserParams{
			Email: "not-an-email", Password: "Secure1!",
		})
		assert.True(t, authlib.IsValidationError(err))

		_, err = repo.Register(ctx, authlib.RegisterUserParams{
			Email: "a@b.com", Password: "weak",
		})
		assert.True(t, authlib.IsValidationError(err))
	})

	t.Run("concurrent registrations with distinct emails all land", func(t *testing.T) {
		repo := newTestUsers(t)

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.Register(ctx, authlib.RegisterUserParams{
					Email:    fmt.Sprintf("user%d@example.com", i),
					Password: "Secure1!",
				})
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err)
			user, err := repo.GetByEmail(ctx, fmt.Sprintf("user%d@example.com", i))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("user%d@example.com", i), user.Email)
		}
	})

	t.Run("same email race is decided by the unique index", func(t *testing.T) {
		// Both racers clear the optimistic lookup before either inserts,
		// leaving the unique index as the only arbiter.
		gate := &sync.WaitGroup{}
		gate.Add(2)
		repo := authlib.NewUsersRepository(newTestDB(t),
			authlib.WithUsersHasher(&gateHasher{Hasher: fastHasher(), gate: gate}),
		)

		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				_, err := repo.Register(ctx, authlib.RegisterUserParams{
					Email: "race@example.com", Password: "Secure1!",
				})
				errs <- err
			}()
		}

		winner, loser := <-errs, <-errs
		if winner != nil {
			winner, loser = loser, winner
		}
		require.NoError(t, winner)
		assert.ErrorIs(t, loser, authlib.ErrUserAlreadyExists)

		user, err := repo.GetByEmail(ctx, "race@example.com")
		require.NoError(t, err)
		assert.Greater(t, user.ID, int64(0))
	})
}

func TestUsersLookups(t *testing.T) {
	ctx := context.Background()
	repo := newTestUsers(t)

	created, err := repo.Register(ctx, authlib.RegisterUserParams{
		Email: "a@b.com", Password: "Secure1!", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		user, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, user.Email)
	})

	t.Run("get by email", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)
	})
}

func TestUsersFlagUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newTestUsers(t)

	created, err := repo.Register(ctx, authlib.RegisterUserParams{
		Email: "a@b.com", Password: "Secure1!",
	})
	require.NoError(t, err)

	t.Run("deactivate and reactivate", func(t *testing.T) {
		user, err := repo.SetActive(ctx, created.ID, false)
		require.NoError(t, err)
		assert.False(t, user.IsActive)

		reloaded, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsActive)

		user, err = repo.SetActive(ctx, created.ID, true)
		require.NoError(t, err)
		assert.True(t, user.IsActive)
	})

	t.Run("verify flag", func(t *testing.T) {
		user, err := repo.SetVerified(ctx, created.ID, true)
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
	})

	t.Run("touch last login", func(t *testing.T) {
		before, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, before.LastLogin)

		require.NoError(t, repo.TouchLastLogin(ctx, created.ID))

		after, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, after.LastLogin)
	})

	t.Run("updates against a missing id fail", func(t *testing.T) {
		_, err := repo.SetActive(ctx, 9999, false)
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)

		_, err = repo.SetVerified(ctx, 9999, true)
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)

		err = repo.TouchLastLogin(ctx, 9999)
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)
	})
}

func TestUsersUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := newTestUsers(t)
	hasher := fastHasher()

	created, err := repo.Register(ctx, authlib.RegisterUserParams{
		Email: "a@b.com", Password: "Secure1!",
	})
	require.NoError(t, err)

	newHash, err := hasher.Hash("Another2@")
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePasswordHash(ctx, created.ID, newHash))

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, newHash, reloaded.PasswordHash)
	assert.NoError(t, hasher.Compare("Another2@", reloaded.PasswordHash))

	t.Run("missing id fails", func(t *testing.T) {
		err := repo.UpdatePasswordHash(ctx, 9999, newHash)
		assert.ErrorIs(t, err, authlib.ErrUserNotFound)
	})
}
