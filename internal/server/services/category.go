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

// CategoryService implements CRUD for the runtime-extensible category set.
// Names are trimmed but case-preserved; uniqueness is case-sensitive.
type CategoryService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, rm repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, rm: rm}
}

// Create registers a new category. A duplicate name surfaces as
// common.ErrorAlreadyExists; entries may use the new kind immediately.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty: %w", common.ErrorValidation)
	}

	c := &models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.rm.Categories(s.db).Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.rm.Categories(s.db).List(ctx)
}

// Update applies a partial update of name and/or description.
func (s *CategoryService) Update(ctx context.Context, id string, name, description *string) (*models.Category, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, fmt.Errorf("category name cannot be empty: %w", common.ErrorValidation)
		}
		name = &trimmed
	}
	return s.rm.Categories(s.db).Update(ctx, id, name, description)
}

// Delete removes a category. Entries referencing its name keep the orphaned
// kind string; the name check applies to future writes only.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.rm.Categories(s.db).Delete(ctx, id)
}
