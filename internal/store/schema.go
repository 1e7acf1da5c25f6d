// internal/store/schema.go
package store

import (
	"context"
	"fmt"

	"studybuddy/internal/common/database"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id                       TEXT PRIMARY KEY,
		full_name                TEXT NOT NULL,
		email                    TEXT NOT NULL,
		phone                    TEXT NOT NULL DEFAULT '',
		country_of_origin        TEXT NOT NULL DEFAULT '',
		preferred_cities         TEXT NOT NULL DEFAULT '',
		program_interest         TEXT NOT NULL DEFAULT '',
		current_qualification    TEXT NOT NULL DEFAULT '',
		target_intake            TEXT NOT NULL DEFAULT '',
		budget_estimate          TEXT NOT NULL DEFAULT '',
		preferred_contact_method TEXT NOT NULL DEFAULT '',
		consent                  BOOLEAN NOT NULL,
		pre_interview_answers    JSONB NOT NULL,
		pre_interview_score      INTEGER NOT NULL,
		suggestion_text          TEXT NOT NULL,
		suggestion_degraded      BOOLEAN NOT NULL DEFAULT FALSE,
		counselor                TEXT NOT NULL DEFAULT '',
		status                   TEXT NOT NULL DEFAULT 'New',
		created_at               TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_counselor ON submissions (counselor)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id                       TEXT PRIMARY KEY,
		full_name                TEXT NOT NULL,
		email                    TEXT NOT NULL,
		phone                    TEXT NOT NULL DEFAULT '',
		country_of_origin        TEXT NOT NULL DEFAULT '',
		preferred_cities         TEXT NOT NULL DEFAULT '',
		program_interest         TEXT NOT NULL DEFAULT '',
		current_qualification    TEXT NOT NULL DEFAULT '',
		target_intake            TEXT NOT NULL DEFAULT '',
		budget_estimate          TEXT NOT NULL DEFAULT '',
		preferred_contact_method TEXT NOT NULL DEFAULT '',
		consent                  BOOLEAN NOT NULL,
		pre_interview_answers    TEXT NOT NULL,
		pre_interview_score      INTEGER NOT NULL,
		suggestion_text          TEXT NOT NULL,
		suggestion_degraded      BOOLEAN NOT NULL DEFAULT 0,
		counselor                TEXT NOT NULL DEFAULT '',
		status                   TEXT NOT NULL DEFAULT 'New',
		created_at               TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_counselor ON submissions (counselor)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at)`,
}

// Migrate creates the submissions table and its indexes when absent.
func Migrate(ctx context.Context, db *database.SQLClient) error {
	stmts := sqliteSchema
	if db.Dialect == database.DialectPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate submissions: %w", err)
		}
	}
	return nil
}
