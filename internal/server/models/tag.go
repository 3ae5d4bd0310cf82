package models

import "time"

// Tag is a free-text label. Rows are created lazily the first time an entry
// references the name; Name is unique and case-significant.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
