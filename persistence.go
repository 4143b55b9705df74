package authlib

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates the users and token_blacklist tables from the bun
// models. Meant for tests and quickstarts; production deployments should
// run the SQL migrations embedded in this package instead (GetMigrationsFS).
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*TokenBlacklist)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return storageError(err, "failed to create schema")
		}
	}

	if _, err := db.NewCreateIndex().
		Model((*TokenBlacklist)(nil)).
		Index("idx_token_blacklist_expires_at").
		Column("expires_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return storageError(err, "failed to create blacklist expiry index")
	}

	return nil
}
