package repository

import (
	"context"
	"database/sql" // Required for sql.Result
	"errors"
	"fmt"
	"strings"

	"quiz-sitting/database"
	internaldb "quiz-sitting/internal/database"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// nextID draws the next value of a sequence. Ids come from sequences on
// every dialect so inserts never need RETURNING.
func nextID(ctx context.Context, db *sqlx.DB, exec DBTX, sequence string) (int64, error) {
	var query string
	if internaldb.Dialect(db.DriverName()) == database.DialectOracle {
		query = fmt.Sprintf(`SELECT %s.NEXTVAL FROM dual`, sequence)
	} else {
		query = fmt.Sprintf(`SELECT nextval('%s')`, sequence)
	}

	var id int64
	if err := exec.GetContext(ctx, &id, query); err != nil {
		return 0, fmt.Errorf("failed to draw id from %s: %w", sequence, err)
	}
	return id, nil
}

// inClause expands ids into "?, ?, ?" and the matching args.
func inClause(ids []int64) (string, []interface{}) {
	query, args, _ := sqlx.In(`(?)`, ids)
	return query, args
}

// isUniqueViolation recognises a duplicate key from Postgres (SQLSTATE 23505)
// or Oracle (ORA-00001).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}
