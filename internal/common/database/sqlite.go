// internal/common/database/sqlite.go
package database

import (
	"database/sql"
	"fmt"

	"studybuddy/internal/common/config"

	_ "modernc.org/sqlite"
)

func openSQLite(cfg config.SQLiteConfig) (*sql.DB, error) {
	dsn := cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if cfg.Path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", cfg.Path, err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return db, nil
}
