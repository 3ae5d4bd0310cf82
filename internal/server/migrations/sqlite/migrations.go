// Package sqlite embeds the goose migrations for the embedded SQLite engine.
// The steps are semantically equivalent to the PostgreSQL set; only literal
// syntax and type names differ.
package sqlite

import "embed"

//go:embed *.sql
var Migrations embed.FS
