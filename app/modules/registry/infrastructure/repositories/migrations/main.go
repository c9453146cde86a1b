package registrymigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the registry schema migrations.
var Migrations = migrate.NewMigrations()
