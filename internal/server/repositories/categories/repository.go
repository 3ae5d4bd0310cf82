package categories

import (
	"context"

	"stashbox/internal/server/models"
)

// Repository persists categories. NameExists is the write-time validation
// gate for Entry.Kind: a live query, never a cached set, so categories added
// at runtime are valid immediately.
type Repository interface {
	Insert(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id string, name, description *string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	NameExists(ctx context.Context, name string) (bool, error)
}
