// Package migrations embeds the server's SQL schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
