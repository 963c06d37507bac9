// Package migrations embeds the SQL schema so binaries and integration
// tests migrate without a migrations directory on disk.
package migrations

import "embed"

// FS holds the versioned up/down scripts.
//
//go:embed *.sql
var FS embed.FS
