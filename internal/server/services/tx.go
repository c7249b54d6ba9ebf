package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/garagekeeper/internal/dbx"
	"github.com/google/uuid"
)

// txRunner runs fn in a transaction that commits only if fn returns nil.
type txRunner func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

func dbTx(db *sql.DB) txRunner {
	return func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, db, nil, fn)
	}
}

// validID reports whether id is a well-formed record id. Record ids are
// UUIDs, so anything else cannot name a stored row.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
