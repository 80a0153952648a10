package database

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed migrations
var migrations embed.FS

// Migration set directories, one per SQL dialect.
const (
	DialectOracle   = "oracle"
	DialectPostgres = "postgres"
)

// Migrations returns the migration files of a dialect, rooted at the set's directory.
func Migrations(dialect string) (fs.FS, error) {
	switch dialect {
	case DialectOracle, DialectPostgres:
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
	sub, err := fs.Sub(migrations, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dialect, err)
	}
	return sub, nil
}
