// Package migrations embeds the PostgreSQL schema migrations for the
// authority server.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
