package tags

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stashbox/internal/common"
	"stashbox/internal/dbx"
	"stashbox/internal/server/models"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, t *models.Tag) error {
	query := `INSERT INTO tags (id, name, created_at) VALUES (?1, ?2, ?3)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.CreatedAt.UTC().Format(sqliteTimeLayout))
	if isSQLiteUniqueViolation(err) {
		return common.ErrorAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var (
			t         models.Tag
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Name, &createdAt); err != nil {
			return nil, err
		}
		ts, err := parseSQLiteTime(createdAt)
		if err != nil {
			return nil, err
		}
		t.CreatedAt = ts
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a tag; its junction rows go with it via ON DELETE CASCADE,
// so deleting a tag still referenced by entries succeeds.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?1`, id)
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
func (r *SQLiteRepository) ReplaceEntryLinks(ctx context.Context, entryID string, names []string) error {
	for _, name := range names {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, name) VALUES (?1, ?2)`,
			uuid.NewString(), name)
		if err != nil {
			return fmt.Errorf("failed to ensure tag %q: %w", name, err)
		}
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM entry_tags WHERE entry_id = ?1`, entryID); err != nil {
		return fmt.Errorf("failed to clear entry tags: %w", err)
	}

	for _, name := range names {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag_id) SELECT ?1, id FROM tags WHERE name = ?2`,
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

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp in database: %w", err)
	}
	return t, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
