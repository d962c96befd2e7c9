// Package sqlstore implements the credential and listing stores on a
// relational database. PostgreSQL (lib/pq) and SQLite (go-sqlite3) share the
// same schema; queries are written with "?" placeholders and rebound per
// dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect names a supported SQL driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

const (
	connectionTimeout = 5 * time.Second
	queryTimeout      = 10 * time.Second
	connMaxIdleTime   = 30 * time.Minute
)

// Config selects the driver and data source.
type Config struct {
	Dialect Dialect
	DSN     string
}

// DB wraps a sql.DB with the dialect its queries must be rebound for.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Wrap adapts an already opened handle. Tests use it with sqlmock.
func Wrap(db *sql.DB, dialect Dialect) *DB {
	return &DB{DB: db, dialect: dialect}
}

// Open connects to the database, verifies it with a ping and creates the
// schema if it does not exist yet.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	switch cfg.Dialect {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sql dsn is required")
	}

	sqlDB, err := sql.Open(string(cfg.Dialect), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Dialect == SQLite {
		// SQLite only supports one writer.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	db := Wrap(sqlDB, cfg.Dialect)
	if err := db.EnsureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	user_type TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	listing_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const schemaListings = `
CREATE TABLE IF NOT EXISTS listings (
	url TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	photos TEXT NOT NULL DEFAULT '[]',
	open BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// EnsureSchema creates the users and listings tables.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaUsers); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaListings); err != nil {
		return fmt.Errorf("ensure listings schema: %w", err)
	}
	return nil
}

// Ping backs the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// rebind rewrites "?" placeholders into the dialect's bind syntax.
func (db *DB) rebind(q string) string {
	if db.dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
