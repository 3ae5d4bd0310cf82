// Package postgres embeds the goose migrations for the PostgreSQL engine.
// The steps are semantically equivalent to the SQLite set; only literal
// syntax and type names differ.
package postgres

import "embed"

//go:embed *.sql
var Migrations embed.FS
