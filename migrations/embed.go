// Package migrations carries the SQL schema migrations, embedded so the
// server and migrate binaries need no files on disk.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair in this directory
//
//go:embed *.sql
var FS embed.FS
