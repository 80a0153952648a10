package database

import (
	"fmt"
	"time"

	"quiz-sitting/database"
	"quiz-sitting/internal/config"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver (pure Go)
)

func init() {
	// go-ora registers as "oracle", which sqlx does not know; it takes :name binds.
	sqlx.BindDriver(config.DriverOracle, sqlx.NAMED)
}

// Dialect maps a driver name to its SQL dialect.
func Dialect(driver string) string {
	switch driver {
	case config.DriverOracle, config.DriverGodror:
		return database.DialectOracle
	default:
		return database.DialectPostgres
	}
}

// NewDB opens and pings a connection pool for the configured driver.
func NewDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DB.Driver, err)
	}

	if cfg.DB.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.SetMaxIdleConns(cfg.DB.MaxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.DB.Driver, err)
	}
	return db, nil
}
