// Package tags provides the engine-specific repositories for tags and the
// entry_tags junction table.
package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"stashbox/internal/common"
	"stashbox/internal/dbx"
	"stashbox/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, t *models.Tag) error {
	query := `INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.CreatedAt)
	if isPgUniqueViolation(err) {
		return common.ErrorAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a tag; its junction rows go with it via ON DELETE CASCADE,
// so deleting a tag still referenced by entries succeeds.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ReplaceEntryLinks gives the entry exactly the links named in names.
// The insert-if-absent on tags means a writer that loses a name race
// silently links against the row the winner created.
func (r *PostgresRepository) ReplaceEntryLinks(ctx context.Context, entryID string, names []string) error {
	for _, name := range names {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO tags (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), name)
		if err != nil {
			return fmt.Errorf("failed to ensure tag %q: %w", name, err)
		}
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM entry_tags WHERE entry_id = $1`, entryID); err != nil {
		return fmt.Errorf("failed to clear entry tags: %w", err)
	}

	for _, name := range names {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag_id) SELECT $1, id FROM tags WHERE name = $2`,
			entryID, name)
		if err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("tag %q vanished during link: %w", name, sql.ErrNoRows)
		}
	}
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
