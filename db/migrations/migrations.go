// Package migrations embeds the SQL schema so binaries can apply it without
// shipping the files separately.
package migrations

import "embed"

// FS holds every NNNN_name.{up,down}.sql file.
//
//go:embed *.sql
var FS embed.FS
