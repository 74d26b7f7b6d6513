package db

import "embed"

// MigrationFS embebe los archivos SQL de internal/db/migrations.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
