package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Category) error {
	query := `INSERT INTO categories (id, name, description, created_at) VALUES (?1, ?2, ?3, ?4)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, c.CreatedAt.UTC().Format(sqliteTimeLayout))
	if isSQLiteUniqueViolation(err) {
		return common.ErrorAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM categories WHERE id = ?1`, id)

	c, err := scanSQLiteCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		c, err := scanSQLiteCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, name, description *string) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE(?2, name),
		    description = COALESCE(?3, description)
		WHERE id = ?1
		RETURNING id, name, description, created_at
	`
	row := r.db.QueryRowContext(ctx, query, id, name, description)

	c, err := scanSQLiteCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if isSQLiteUniqueViolation(err) {
		return nil, common.ErrorAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// Delete removes a category even when entries still reference its name:
// Entry.Kind is a name reference validated at write time, not a foreign key.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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

func (r *SQLiteRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return exists, nil
}

func scanSQLiteCategory(scan func(dest ...any) error) (*models.Category, error) {
	var (
		c         models.Category
		createdAt string
	)
	if err := scan(&c.ID, &c.Name, &c.Description, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		t, err = time.Parse(time.RFC3339, createdAt)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp in database: %w", err)
	}
	c.CreatedAt = t
	return &c, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
