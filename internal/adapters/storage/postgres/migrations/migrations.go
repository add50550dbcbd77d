// Package migrations embeds the SQL schema files applied at startup.
package migrations

import "embed"

// Files holds the numbered .sql migration files, applied in name order.
//
//go:embed *.sql
var Files embed.FS
