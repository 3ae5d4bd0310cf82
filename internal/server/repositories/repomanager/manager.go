// Package repomanager selects a storage engine once at startup and vends
// repository implementations for it, plus the schema migration hook that
// must complete before any repository call is served.
package repomanager

import (
	"context"
	"database/sql"

	"stashbox/internal/dbx"
	"stashbox/internal/server/repositories/categories"
	"stashbox/internal/server/repositories/entries"
	"stashbox/internal/server/repositories/tags"
)

// RepositoryManager vends engine-specific repositories bound to a DBTX
// (*sql.DB for plain calls, *sql.Tx inside dbx.WithTx) so one transaction
// can span the entry row and the tag normalization.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Engine() string
	Entries(db dbx.DBTX) entries.Repository
	Categories(db dbx.DBTX) categories.Repository
	Tags(db dbx.DBTX) tags.Repository
}
