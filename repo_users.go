package authlib

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

var UpdatePasswordHashSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?;`

// RegisterUserParams is the input for creating a new account
type RegisterUserParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Users owns persistent User records and the invariants that gate token
// issuance: email uniqueness and the active/verified flags.
type Users interface {
	Register(ctx context.Context, params RegisterUserParams) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, params RegisterUserParams) (*User, error)

	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	SetActive(ctx context.Context, id int64, active bool) (*User, error)
	SetVerified(ctx context.Context, id int64, verified bool) (*User, error)
	TouchLastLogin(ctx context.Context, id int64) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

type users struct {
	db     bun.IDB
	hasher Hasher
}

var _ Users = (*users)(nil)

type UsersOption func(*users)

// WithUsersHasher overrides the hasher used when registering accounts
func WithUsersHasher(h Hasher) UsersOption {
	return func(u *users) {
		if h != nil {
			u.hasher = h
		}
	}
}

func NewUsersRepository(db bun.IDB, opts ...UsersOption) Users {
	repo := &users{
		db:     db,
		hasher: NewArgon2Hasher(DefaultArgon2Params),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) Register(ctx context.Context, params RegisterUserParams) (*User, error) {
	return a.RegisterTx(ctx, a.db, params)
}

// RegisterTx validates the credentials, hashes the password, and inserts the
// record. The optimistic GetByEmail below only provides a friendly fast
// failure, the unique index on email is the authoritative check and decides
// the winner when concurrent registrations race.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, params RegisterUserParams) (*User, error) {
	if err := ValidateEmail(params.Email); err != nil {
		return nil, err
	}

	if err := ValidatePassword(params.Password); err != nil {
		return nil, err
	}

	if _, err := a.getByEmailTx(ctx, tx, params.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !goerrors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        params.Email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		IsActive:     true,
		IsVerified:   false,
	}

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, storageError(err, "failed to create user")
	}

	return user, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := a.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(err, "failed to load user by id")
	}

	return user, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getByEmailTx(ctx, a.db, email)
}

func (a *users) getByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	user := &User{}
	err := tx.NewSelect().
		Model(user).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(err, "failed to load user by email")
	}

	return user, nil
}

// SetActive flips the is_active flag without re-validating unrelated fields
func (a *users) SetActive(ctx context.Context, id int64, active bool) (*User, error) {
	return a.setFlag(ctx, id, "is_active", active)
}

// SetVerified flips the is_verified flag without re-validating unrelated
// fields
func (a *users) SetVerified(ctx context.Context, id int64, verified bool) (*User, error) {
	return a.setFlag(ctx, id, "is_verified", verified)
}

func (a *users) setFlag(ctx context.Context, id int64, column string, value bool) (*User, error) {
	user, err := a.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := a.db.NewUpdate().
		Model(user).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return nil, storageError(err, "failed to update user flag")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrUserNotFound
	}

	switch column {
	case "is_active":
		user.IsActive = value
	case "is_verified":
		user.IsVerified = value
	}

	return user, nil
}

func (a *users) TouchLastLogin(ctx context.Context, id int64) error {
	user, err := a.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	user.LastLogin = &now

	res, err := a.db.NewUpdate().
		Model(user).
		Set("last_login = ?", now).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return storageError(err, "failed to record login time")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (a *users) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	if _, err := a.GetByID(ctx, id); err != nil {
		return err
	}

	if _, err := a.db.NewRaw(UpdatePasswordHashSQL, passwordHash, id).Exec(ctx); err != nil {
		return storageError(err, "failed to update password hash")
	}

	return nil
}

// isUniqueViolation detects a storage-level uniqueness conflict across the
// drivers we target. SQLite reports "UNIQUE constraint failed", Postgres
// uses SQLSTATE 23505 with a "duplicate key value" message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
