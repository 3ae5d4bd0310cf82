package entries

import (
	"context"
	"time"

	"stashbox/internal/server/models"
)

// Filter narrows a List call. Zero-value fields are ignored; the set ones
// combine with logical AND. Limit is clamped to [1, 200], Offset to >= 0.
type Filter struct {
	Kind   string
	Status string
	Tag    string
	Search string
	Limit  int64
	Offset int64
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// normalize returns the effective limit and offset for a filter.
func (f Filter) normalize() (limit, offset int64) {
	limit = f.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Repository persists entries. Reads resolve tag names from the entry_tags
// junction table; the legacy tags_json column is write-only.
type Repository interface {
	Insert(ctx context.Context, e *models.Entry) error
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	List(ctx context.Context, f Filter) ([]*models.Entry, error)
	Update(ctx context.Context, id string, p *models.EntryPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
