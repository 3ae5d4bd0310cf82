package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stashbox/internal/common"
	"stashbox/internal/server/models"
	"stashbox/internal/server/repositories/repomanager"
)

// TagService implements direct tag CRUD. Tags are usually created lazily by
// entry writes; this is the explicit path.
type TagService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewTagService(db *sql.DB, rm repomanager.RepositoryManager) *TagService {
	return &TagService{db: db, rm: rm}
}

// Create registers a tag explicitly. Unlike the lazy path used by entry
// writes, a duplicate name here surfaces as common.ErrorAlreadyExists.
func (s *TagService) Create(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name cannot be empty: %w", common.ErrorValidation)
	}

	t := &models.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.rm.Tags(s.db).Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.rm.Tags(s.db).List(ctx)
}

// Delete removes a tag; entries that carried it simply lose the label.
func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.rm.Tags(s.db).Delete(ctx, id)
}
