package sitecms

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Migrations returns the migration directory rooted at its SQL files.
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "data/sql/migrations")
}
