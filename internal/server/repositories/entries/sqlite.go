package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stashbox/internal/common"
	"stashbox/internal/dbx"
	"stashbox/internal/server/models"
)

// sqliteTimeLayout is the fixed-width UTC timestamp format used in SQLite
// text columns. Fixed width keeps lexical ordering equal to time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteSelectEntry = `
	SELECT
	  e.id, e.title, e.kind, e.status, e.notes, e.url, e.source,
	  COALESCE(
	    (SELECT json_group_array(sub.name)
	     FROM (SELECT t.name
	           FROM entry_tags et
	           JOIN tags t ON t.id = et.tag_id
	           WHERE et.entry_id = e.id
	           ORDER BY t.name) sub),
	    '[]'
	  ) AS tags_json,
	  e.created_at, e.updated_at
	FROM entries e
`

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.Entry) error {
	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO entries (id, title, kind, status, notes, url, source, tags_json, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Kind, e.Status, e.Notes, e.URL, e.Source, tagsJSON,
		e.CreatedAt.UTC().Format(sqliteTimeLayout), e.UpdatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectEntry+` WHERE e.id = ?1`, id)

	e, err := scanSQLiteEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

// List applies the filter with AND semantics. The tag filter is an EXISTS
// probe against the junction table so an entry is never returned twice.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]*models.Entry, error) {
	limit, offset := f.normalize()
	query := sqliteSelectEntry + `
	WHERE (?1 IS NULL OR e.kind = ?1)
	  AND (?2 IS NULL OR e.status = ?2)
	  AND (
	    ?3 IS NULL
	    OR LOWER(e.title) LIKE '%' || LOWER(?3) || '%'
	    OR LOWER(e.notes) LIKE '%' || LOWER(?3) || '%'
	  )
	  AND (
	    ?4 IS NULL
	    OR EXISTS (
	      SELECT 1 FROM entry_tags et2
	      JOIN tags t2 ON t2.id = et2.tag_id
	      WHERE et2.entry_id = e.id AND t2.name = ?4
	    )
	  )
	ORDER BY e.created_at DESC, e.id DESC
	LIMIT ?5 OFFSET ?6
	`
	rows, err := r.db.QueryContext(ctx, query,
		nullIfEmpty(f.Kind), nullIfEmpty(f.Status), nullIfEmpty(f.Search), nullIfEmpty(f.Tag),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanSQLiteEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, p *models.EntryPatch, updatedAt time.Time) error {
	tagsJSON, err := marshalPatchTags(p.Tags)
	if err != nil {
		return err
	}
	query := `
		UPDATE entries
		SET
		  title = COALESCE(?2, title),
		  kind = COALESCE(?3, kind),
		  status = COALESCE(?4, status),
		  notes = COALESCE(?5, notes),
		  url = COALESCE(?6, url),
		  source = COALESCE(?7, source),
		  tags_json = COALESCE(?8, tags_json),
		  updated_at = ?9
		WHERE id = ?1
	`
	res, err := r.db.ExecContext(ctx, query,
		id, p.Title, p.Kind, p.Status, p.Notes, p.URL, p.Source, tagsJSON,
		updatedAt.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
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

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
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

// scanSQLiteEntry scans one row produced by sqliteSelectEntry, converting
// text timestamps back to time.Time.
func scanSQLiteEntry(scan func(dest ...any) error) (*models.Entry, error) {
	var (
		e                    models.Entry
		url                  sql.NullString
		tagsJSON             string
		createdAt, updatedAt string
	)
	if err := scan(&e.ID, &e.Title, &e.Kind, &e.Status, &e.Notes, &url, &e.Source,
		&tagsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if url.Valid {
		e.URL = &url.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("invalid tags payload in database: %w", err)
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	var err error
	if e.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		// Rows written by SQL defaults or external tools may omit the
		// fractional part.
		t, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp in database: %w", err)
	}
	return t, nil
}
