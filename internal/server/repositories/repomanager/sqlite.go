package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"stashbox/internal/dbx"
	sqlitemigrations "stashbox/internal/server/migrations/sqlite"
	"stashbox/internal/server/repositories/categories"
	"stashbox/internal/server/repositories/entries"
	"stashbox/internal/server/repositories/tags"
)

// SQLiteRepositoryManager vends SQLite-backed repositories and runs the
// embedded sqlite migration set via goose.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Engine() string { return "sqlite" }

func (m *SQLiteRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Tags(db dbx.DBTX) tags.Repository {
	return tags.NewSQLiteRepository(db)
}

// RunMigrations sets up goose with the embedded sqlite migrations and runs
// them against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sqlitemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
