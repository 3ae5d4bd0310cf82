// Package models defines the persisted domain types: entries, categories,
// tags and the status vocabulary shared by both storage engines.
package models

import "time"

// Entry statuses. Status is a closed vocabulary, unlike Kind which names a
// row in the categories table and is validated at write time.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDropped    = "dropped"
)

// Statuses lists the allowed entry statuses in display order.
var Statuses = []string{StatusPlanned, StatusInProgress, StatusCompleted, StatusDropped}

// ValidStatus reports whether s is one of the allowed entry statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Entry is a tracked item: a book, an article, a note, a link.
// Tags holds resolved tag names; after migration the entry_tags junction is
// the authoritative source and the legacy tags_json column is write-only.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	URL       *string   `json:"url"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryPatch describes a partial update. Nil fields are left unchanged;
// a non-nil Tags slice fully replaces the entry's tag set.
type EntryPatch struct {
	Title  *string
	Kind   *string
	Status *string
	Notes  *string
	URL    *string
	Source *string
	Tags   []string
}
