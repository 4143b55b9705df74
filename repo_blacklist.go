package authlib

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type blacklist struct {
	db bun.IDB
}

var _ Blacklist = (*blacklist)(nil)

func NewBlacklistRepository(db bun.IDB) Blacklist {
	return &blacklist{db: db}
}

// Revoke records the token identifier as no longer honorable. The insert is
// idempotent, re-revoking the same jti is a no-op, not an error.
func (b *blacklist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	entry := &TokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}

	if _, err := b.db.NewInsert().Model(entry).Ignore().Exec(ctx); err != nil {
		return storageError(err, "failed to blacklist token")
	}

	return nil
}

// IsRevoked checks membership in the durable store. Verification may run on
// a different instance than the one that revoked, so this always hits the
// shared store.
func (b *blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.db.NewSelect().
		Model((*TokenBlacklist)(nil)).
		Where("?TableAlias.jti = ?", jti).
		Exists(ctx)

	if err != nil {
		return false, storageError(err, "failed to check token blacklist")
	}

	return exists, nil
}

// PurgeExpired deletes entries whose tokens have passed their natural
// expiry. An expired token is already unverifiable, keeping its entry buys
// nothing.
func (b *blacklist) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := b.db.NewDelete().
		Model((*TokenBlacklist)(nil)).
		Where("?TableAlias.expires_at <= ?", time.Now()).
		Exec(ctx)

	if err != nil {
		return 0, storageError(err, "failed to purge expired blacklist entries")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageError(err, "failed to count purged blacklist entries")
	}

	return affected, nil
}
