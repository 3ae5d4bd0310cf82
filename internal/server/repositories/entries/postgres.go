// Package entries provides the engine-specific repositories for entry
// persistence and filtered listing.
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

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// pgSelectEntry resolves tag names from the junction table, never from the
// legacy tags_json column.
const pgSelectEntry = `
	SELECT
	  e.id, e.title, e.kind, e.status, e.notes, e.url, e.source,
	  COALESCE(
	    (SELECT json_agg(sub.name)::text
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

func (r *PostgresRepository) Insert(ctx context.Context, e *models.Entry) error {
	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO entries (id, title, kind, status, notes, url, source, tags_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Kind, e.Status, e.Notes, e.URL, e.Source, tagsJSON, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx, pgSelectEntry+` WHERE e.id = $1`, id)

	e, err := scanPostgresEntry(row.Scan)
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
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Entry, error) {
	limit, offset := f.normalize()
	query := pgSelectEntry + `
	WHERE ($1::text IS NULL OR e.kind = $1)
	  AND ($2::text IS NULL OR e.status = $2)
	  AND (
	    $3::text IS NULL
	    OR LOWER(e.title) LIKE '%' || LOWER($3) || '%'
	    OR LOWER(e.notes) LIKE '%' || LOWER($3) || '%'
	  )
	  AND (
	    $4::text IS NULL
	    OR EXISTS (
	      SELECT 1 FROM entry_tags et2
	      JOIN tags t2 ON t2.id = et2.tag_id
	      WHERE et2.entry_id = e.id AND t2.name = $4
	    )
	  )
	ORDER BY e.created_at DESC, e.id DESC
	LIMIT $5 OFFSET $6
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
		e, err := scanPostgresEntry(rows.Scan)
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

func (r *PostgresRepository) Update(ctx context.Context, id string, p *models.EntryPatch, updatedAt time.Time) error {
	tagsJSON, err := marshalPatchTags(p.Tags)
	if err != nil {
		return err
	}
	query := `
		UPDATE entries
		SET
		  title = COALESCE($2, title),
		  kind = COALESCE($3, kind),
		  status = COALESCE($4, status),
		  notes = COALESCE($5, notes),
		  url = COALESCE($6, url),
		  source = COALESCE($7, source),
		  tags_json = COALESCE($8, tags_json),
		  updated_at = $9
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		id, p.Title, p.Kind, p.Status, p.Notes, p.URL, p.Source, tagsJSON, updatedAt)
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

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
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

// scanPostgresEntry scans one row produced by pgSelectEntry.
func scanPostgresEntry(scan func(dest ...any) error) (*models.Entry, error) {
	var (
		e        models.Entry
		url      sql.NullString
		tagsJSON string
	)
	if err := scan(&e.ID, &e.Title, &e.Kind, &e.Status, &e.Notes, &url, &e.Source,
		&tagsJSON, &e.CreatedAt, &e.UpdatedAt); err != nil {
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
	return &e, nil
}

// marshalTags serializes tag names for the legacy tags_json column.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to serialize tags: %w", err)
	}
	return string(b), nil
}

// marshalPatchTags returns nil when tags are not part of the patch so the
// COALESCE in Update leaves the column untouched.
func marshalPatchTags(tags []string) (*string, error) {
	if tags == nil {
		return nil, nil
	}
	s, err := marshalTags(tags)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
