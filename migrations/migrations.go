// Package migrations embeds the SQL schema migrations so the server binary
// can bring the database up to date on its own.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
