package ratingmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the rating module schema history.
var Migrations = migrate.NewMigrations()
