package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"quiz-sitting/database"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

// Direction selects which migration files run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// RunMigrations applies the embedded migrations for the db's dialect and
// returns the names of the files it executed. PostgreSQL goes through
// golang-migrate; Oracle uses a small runner since golang-migrate has no
// Oracle driver.
func RunMigrations(ctx context.Context, db *sqlx.DB, dir Direction) ([]string, error) {
	dialect := Dialect(db.DriverName())
	fsys, err := database.Migrations(dialect)
	if err != nil {
		return nil, err
	}
	if dialect == database.DialectPostgres {
		return runGolangMigrate(db, fsys, dir)
	}
	return runOracleMigrations(ctx, db, fsys, dir)
}

func runGolangMigrate(db *sqlx.DB, fsys fs.FS, dir Direction) ([]string, error) {
	source, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("could not open migration source: %w", err)
	}
	driver, err := migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}

	before, _, _ := m.Version()
	switch dir {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}
	after, _, _ := m.Version()
	return []string{fmt.Sprintf("version %d -> %d", before, after)}, nil
}

type migrationFile struct {
	version uint64
	name    string
}

func listMigrations(fsys fs.FS, dir Direction) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	suffix := "." + string(dir) + ".sql"

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", e.Name())
		}
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s has an invalid version: %w", e.Name(), err)
		}
		files = append(files, migrationFile{version: v, name: e.Name()})
	}

	sort.Slice(files, func(i, j int) bool {
		if dir == Down {
			return files[i].version > files[j].version
		}
		return files[i].version < files[j].version
	})
	return files, nil
}

// splitStatements cuts a script at semicolons that end a line.
// Oracle rejects a trailing semicolon inside a single statement.
func splitStatements(script string) []string {
	var stmts []string
	var current strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			current.WriteString(strings.TrimSuffix(trimmed, ";"))
			stmts = append(stmts, current.String())
			current.Reset()
			continue
		}
		current.WriteString(trimmed)
		current.WriteByte('\n')
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}

func ensureOracleVersionTable(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`); err != nil {
		return fmt.Errorf("could not check schema_migrations: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE schema_migrations (version NUMBER(19) PRIMARY KEY)`); err != nil {
		return fmt.Errorf("could not create schema_migrations: %w", err)
	}
	return nil
}

func runOracleMigrations(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir Direction) ([]string, error) {
	if err := ensureOracleVersionTable(ctx, db); err != nil {
		return nil, err
	}

	var appliedVersions []uint64
	if err := db.SelectContext(ctx, &appliedVersions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("could not read schema_migrations: %w", err)
	}
	applied := make(map[uint64]bool, len(appliedVersions))
	for _, v := range appliedVersions {
		applied[v] = true
	}

	files, err := listMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}

	var executed []string
	for _, f := range files {
		if (dir == Up && applied[f.version]) || (dir == Down && !applied[f.version]) {
			continue
		}

		content, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return executed, fmt.Errorf("could not read migration file %s: %w", f.name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return executed, fmt.Errorf("could not execute migration %s: %w", f.name, err)
			}
		}

		if dir == Down {
			_, err = db.ExecContext(ctx, db.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), f.version)
		} else {
			_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), f.version)
		}
		if err != nil {
			return executed, fmt.Errorf("could not record migration %s: %w", f.name, err)
		}
		executed = append(executed, f.name)
	}
	return executed, nil
}
