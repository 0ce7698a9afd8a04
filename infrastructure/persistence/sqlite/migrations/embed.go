package migrations

import "embed"

// FS contains the embedded SQLite migrations for string storage.
//
//go:embed *.sql
var FS embed.FS
