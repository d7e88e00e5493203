// Package migrations embeds the goose SQL migrations for the threat_logs table.
package migrations

import "embed"

// FS holds the versioned migration files at its root.
//
//go:embed *.sql
var FS embed.FS
