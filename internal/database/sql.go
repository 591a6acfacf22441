package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// Dialect captures the SQL differences between the supported engines.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DriverName returns the database/sql driver name registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// Rebind rewrites ? placeholders to $n for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB bundles a pool with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenSQL opens and pings a relational database. SQLite is limited to a
// single connection so the engine's write serialization is the only lock.
func OpenSQL(ctx context.Context, driver, dsn string) (*DB, error) {
	d := Dialect(driver)
	if d != SQLite && d != Postgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if d == SQLite && !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_journal_mode=WAL&_timeout=5000&_foreign_keys=on"
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if d == SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sql ping: %w", err)
	}
	return &DB{DB: db, Dialect: d}, nil
}

var migrations = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS admins (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'events',
			attachment_url TEXT,
			attachment_type TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			CHECK ((attachment_url IS NULL) = (attachment_type IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS admins (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'events',
			attachment_url TEXT,
			attachment_type TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CHECK ((attachment_url IS NULL) = (attachment_type IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at)`,
	},
}

// Migrate creates the admins and articles tables. Safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations[db.Dialect] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
