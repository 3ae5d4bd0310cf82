package models

import "time"

// Category is a runtime-extensible entry kind. Name is unique and matched
// case-sensitively; Entry.Kind references it by name, not by foreign key.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SeededCategoryIDs maps the eight seeded category names to their fixed
// identifiers. The same literals appear in the PostgreSQL and SQLite seed
// migrations so a name resolves to the same id on every engine and every
// deployment.
var SeededCategoryIDs = map[string]string{
	"book":    "5f0c6b8a-0d4e-4f27-9a41-7c1f2a6d9b01",
	"article": "8c2e1d94-3b6f-4a58-b3d2-0e9a4c7f1b02",
	"movie":   "2a7d9e46-5c1b-4d83-8f6a-3b0e1d9c4a03",
	"series":  "e4b1c8d2-7a9f-4e65-a0c3-6d2f8b5e1c04",
	"anime":   "9d3f7a21-1e8c-4b94-95d7-8a4b0f6e2d05",
	"game":    "6b8e2f53-9d0a-4c71-b2e8-5f7c3a1d9e06",
	"link":    "3c9a5d87-4f2e-4a60-9b1d-0c8e6f4a2b07",
	"note":    "1e6d3b09-8a5c-4f42-8d7e-2b9f0c5a6d08",
}
