// Package services orchestrates repositories into the operations the HTTP
// layer exposes: validation, identifier and timestamp assignment, and the
// transactions that keep entry rows and tag links consistent.
package services

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
	"stashbox/internal/server/repositories/entries"
	"stashbox/internal/server/repositories/repomanager"
)

// EntryService implements entry CRUD and filtered listing over whichever
// engine the repository manager was built for.
type EntryService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewEntryService(db *sql.DB, rm repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, rm: rm}
}

// CreateEntryParams carries a create request. Zero-value Status and Source
// default to "planned" and "manual".
type CreateEntryParams struct {
	Title  string
	Kind   string
	Status string
	Notes  string
	URL    *string
	Source string
	Tags   []string
}

// Create validates the kind against the live category set, assigns the
// identifier and timestamps, and persists the entry row together with its
// tag links in one transaction.
func (s *EntryService) Create(ctx context.Context, p CreateEntryParams) (*models.Entry, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", common.ErrorValidation)
	}
	if err := s.validateKind(ctx, p.Kind); err != nil {
		return nil, err
	}

	status := p.Status
	if status == "" {
		status = models.StatusPlanned
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	source := p.Source
	if source == "" {
		source = "manual"
	}

	now := time.Now().UTC()
	e := &models.Entry{
		ID:        uuid.NewString(),
		Title:     title,
		Kind:      p.Kind,
		Status:    status,
		Notes:     p.Notes,
		URL:       p.URL,
		Source:    source,
		Tags:      dedupeTags(p.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Entries(tx).Insert(ctx, e); err != nil {
			return err
		}
		if len(e.Tags) == 0 {
			return nil
		}
		return s.rm.Tags(tx).ReplaceEntryLinks(ctx, e.ID, e.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, e.ID)
}

// Get returns the entry with tag names resolved from the junction table.
func (s *EntryService) Get(ctx context.Context, id string) (*models.Entry, error) {
	return s.rm.Entries(s.db).GetByID(ctx, id)
}

// List returns entries matching the filter, newest first. Kind and status
// filters are validated the same way writes are.
func (s *EntryService) List(ctx context.Context, f entries.Filter) ([]*models.Entry, error) {
	if f.Kind != "" {
		if err := s.validateKind(ctx, f.Kind); err != nil {
			return nil, err
		}
	}
	if f.Status != "" {
		if err := validateStatus(f.Status); err != nil {
			return nil, err
		}
	}
	return s.rm.Entries(s.db).List(ctx, f)
}

// Update applies a partial update. A supplied kind or status is re-validated;
// a supplied tag set fully replaces the previous links. updated_at advances
// to the time of the mutation.
func (s *EntryService) Update(ctx context.Context, id string, p *models.EntryPatch) (*models.Entry, error) {
	if p.Kind != nil {
		if err := s.validateKind(ctx, *p.Kind); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return nil, err
		}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", common.ErrorValidation)
	}
	if p.Tags != nil {
		p.Tags = dedupeTags(p.Tags)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Entries(tx).Update(ctx, id, p, time.Now().UTC()); err != nil {
			return err
		}
		if p.Tags == nil {
			return nil
		}
		return s.rm.Tags(tx).ReplaceEntryLinks(ctx, id, p.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes the entry; its junction rows cascade away with it.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	return s.rm.Entries(s.db).Delete(ctx, id)
}

// validateKind is the category validation gate: a point-in-time lookup
// against the categories table, so kinds added at runtime are immediately
// valid.
func (s *EntryService) validateKind(ctx context.Context, kind string) error {
	exists, err := s.rm.Categories(s.db).NameExists(ctx, kind)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("invalid kind %q, not found in categories: %w", kind, common.ErrorValidation)
	}
	return nil
}

func validateStatus(status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid status %q, allowed: %s: %w",
			status, strings.Join(models.Statuses, ", "), common.ErrorValidation)
	}
	return nil
}

// dedupeTags trims names, drops empties and collapses duplicates while
// preserving first-seen order. Case is significant: "SciFi" and "scifi"
// are different tags.
func dedupeTags(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
