// internal/common/database/sql.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"studybuddy/internal/common/config"
)

// Dialect selects placeholder and DDL flavour.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLClient wraps a *sql.DB opened for one of the supported dialects.
type SQLClient struct {
	DB      *sql.DB
	Dialect Dialect
}

// NewSQL opens the database named by cfg.Driver.
func NewSQL(cfg config.DatabaseConfig) (*SQLClient, error) {
	switch Dialect(cfg.Driver) {
	case DialectPostgres:
		db, err := openPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return &SQLClient{DB: db, Dialect: DialectPostgres}, nil
	case DialectSQLite:
		db, err := openSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return &SQLClient{DB: db, Dialect: DialectSQLite}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// WrapSQL adopts an already-open handle, e.g. from sqlmock.
func WrapSQL(db *sql.DB, dialect Dialect) *SQLClient {
	return &SQLClient{DB: db, Dialect: dialect}
}

// Rebind rewrites '?' placeholders to '$n' for postgres.
func (c *SQLClient) Rebind(query string) string {
	if c.Dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
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

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
