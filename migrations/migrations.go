// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS holds the NNN_title.up.sql / NNN_title.down.sql files.
//
//go:embed *.sql
var FS embed.FS
