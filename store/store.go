package store

import (
	"database/sql"
	"fmt"
	"strings"

	"liftcore/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB is the lift journal: request history, lift audit trail, event outbox
// and admin accounts.
type DB struct {
	*sql.DB
	dialect Dialect
}

func Open(cfg *config.DatabaseConfig) (*DB, error) {
	var (
		sqlDB   *sql.DB
		dialect Dialect
		err     error
	)
	switch cfg.Driver {
	case "sqlite":
		dialect = sqliteDialect{}
		sqlDB, err = sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", cfg.SQLite.Path))
		if err == nil {
			// Lift workers and HTTP handlers share one writer.
			sqlDB.SetMaxOpenConns(1)
		}
	case "postgres":
		pg := cfg.Postgres
		dialect = postgresDialect{}
		sqlDB, err = sql.Open("pgx", fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
			pg.Host, pg.Port, pg.Database, pg.User, pg.Password, pg.SSLMode))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	db := &DB{DB: sqlDB, dialect: dialect}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// Driver is "sqlite" or "postgres".
func (db *DB) Driver() string { return db.dialect.Name() }

// Q rewrites ? placeholders and datetime literals for PostgreSQL, passes through for SQLite.
func (db *DB) Q(query string) string {
	if db.Driver() == "postgres" {
		query = strings.ReplaceAll(query, sqliteDialect{}.Now(), db.dialect.Now())
		return rebind(query, db.dialect)
	}
	return query
}

// migrate creates the lift tables in order, naming the table that failed.
func (db *DB) migrate() error {
	for _, t := range tables {
		if _, err := db.Exec(t.render(db.dialect)); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}
