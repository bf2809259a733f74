// Package emailcount holds assets shared by the command and its tests.
package emailcount

import "embed"

// Migrations contains the goose migrations of the PostgreSQL sink.
//
//go:embed migrations/*.sql
var Migrations embed.FS
