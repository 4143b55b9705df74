package authlib

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	TokenBlacklist() Blacklist
}

type mngr struct {
	db        *bun.DB
	users     Users
	blacklist Blacklist
}

type ManagerOption func(*mngr)

// WithManagerUsers overrides the users repository, mainly for tests
func WithManagerUsers(users Users) ManagerOption {
	return func(m *mngr) {
		if users != nil {
			m.users = users
		}
	}
}

// WithManagerBlacklist overrides the blacklist repository, mainly for tests
func WithManagerBlacklist(b Blacklist) ManagerOption {
	return func(m *mngr) {
		if b != nil {
			m.blacklist = b
		}
	}
}

func NewRepositoryManager(db *bun.DB, opts ...ManagerOption) RepositoryManager {
	m := &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		blacklist: NewBlacklistRepository(db),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.blacklist == nil {
		return errors.New("repository tokenBlacklist should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) TokenBlacklist() Blacklist {
	return m.blacklist
}
