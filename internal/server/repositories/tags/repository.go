package tags

import (
	"context"

	"stashbox/internal/server/models"
)

// Repository persists tags and their links to entries.
//
// ReplaceEntryLinks is the tag normalizer: it creates missing Tag rows for
// the given names (reusing existing rows on a name collision, so concurrent
// writers never surface a conflict), then replaces the entry's junction rows
// with exactly one link per name. Callers run it inside the transaction that
// writes the entry row.
type Repository interface {
	Insert(ctx context.Context, t *models.Tag) error
	List(ctx context.Context) ([]*models.Tag, error)
	Delete(ctx context.Context, id string) error
	ReplaceEntryLinks(ctx context.Context, entryID string, names []string) error
}
