// Package store persists submissions in a SQL table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"studybuddy/internal/common/database"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/models"
)

var (
	ErrNotFound     = errors.New("SUBMISSION_NOT_FOUND")
	ErrDuplicateKey = errors.New("DUPLICATE_SUBMISSION")
)

// Repository is the record store contract used by the workflows.
type Repository interface {
	Insert(ctx context.Context, s *models.Submission) error
	ListAll(ctx context.Context) ([]models.Submission, error)
	ListByCounselor(ctx context.Context, counselor string) ([]models.Submission, error)
	UpdateAssignment(ctx context.Context, id string, update models.AssignmentUpdate) error
	Get(ctx context.Context, id string) (*models.Submission, error)
	Search(ctx context.Context, term string) ([]models.Submission, error)
	Count(ctx context.Context) (int, error)
}

const selectColumns = `id, full_name, email, phone, country_of_origin, preferred_cities,
	program_interest, current_qualification, target_intake, budget_estimate,
	preferred_contact_method, consent, pre_interview_answers, pre_interview_score,
	suggestion_text, suggestion_degraded, counselor, status, created_at`

// SQLStore implements Repository over Postgres or SQLite.
type SQLStore struct {
	db     *database.SQLClient
	logger logger.Logger
	now    func() time.Time
}

func NewSQLStore(db *database.SQLClient, log logger.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger.ForComponent(log, "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Insert stores a new submission. CreatedAt is assigned when zero.
func (s *SQLStore) Insert(ctx context.Context, sub *models.Submission) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	if sub.Status == "" {
		sub.Status = models.StatusNew
	}

	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO submissions (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	p := sub.Profile
	_, err = s.db.DB.ExecContext(ctx, query,
		sub.ID, p.FullName, p.Email, p.Phone, p.CountryOfOrigin, p.PreferredCities,
		string(p.ProgramInterest), p.CurrentQualification, p.TargetIntake, p.BudgetEstimate,
		string(p.PreferredContactMethod), p.Consent, string(answers), sub.Score,
		sub.Suggestion, sub.SuggestionDegraded, sub.Counselor, string(sub.Status), sub.CreatedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, sub.ID)
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	s.logger.Debug("Submission inserted", map[string]interface{}{"submissionId": sub.ID})
	return nil
}

// ListAll returns every submission, newest first.
func (s *SQLStore) ListAll(ctx context.Context) ([]models.Submission, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM submissions ORDER BY created_at DESC, id DESC`)
}

// ListByCounselor filters on exact counselor equality.
func (s *SQLStore) ListByCounselor(ctx context.Context, counselor string) ([]models.Submission, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM submissions WHERE counselor = ? ORDER BY created_at DESC, id DESC`, counselor)
}

// Search matches term case-insensitively against name, email, country and program.
func (s *SQLStore) Search(ctx context.Context, term string) ([]models.Submission, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListAll(ctx)
	}
	like := "%" + strings.ToLower(term) + "%"
	return s.query(ctx, `SELECT `+selectColumns+` FROM submissions
		WHERE LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(country_of_origin) LIKE ? OR LOWER(program_interest) LIKE ?
		ORDER BY created_at DESC, id DESC`, like, like, like, like)
}

// Get loads one submission by id.
func (s *SQLStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	row := s.db.DB.QueryRowContext(ctx, s.db.Rebind(`SELECT `+selectColumns+` FROM submissions WHERE id = ?`), id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// UpdateAssignment applies a partial update in one statement.
func (s *SQLStore) UpdateAssignment(ctx context.Context, id string, update models.AssignmentUpdate) error {
	if update.IsEmpty() {
		_, err := s.Get(ctx, id)
		return err
	}

	var sets []string
	var args []interface{}
	if update.Counselor != nil {
		sets = append(sets, "counselor = ?")
		args = append(args, *update.Counselor)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*update.Status))
	}
	args = append(args, id)

	query := s.db.Rebind(`UPDATE submissions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("Assignment updated", map[string]interface{}{"submissionId": id})
	return nil
}

// Count returns the number of stored submissions.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func (s *SQLStore) query(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := s.db.DB.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		sub       models.Submission
		program   string
		contact   string
		status    string
		answers   []byte
		createdAt time.Time
	)
	p := &sub.Profile
	err := row.Scan(
		&sub.ID, &p.FullName, &p.Email, &p.Phone, &p.CountryOfOrigin, &p.PreferredCities,
		&program, &p.CurrentQualification, &p.TargetIntake, &p.BudgetEstimate,
		&contact, &p.Consent, &answers, &sub.Score,
		&sub.Suggestion, &sub.SuggestionDegraded, &sub.Counselor, &status, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.ProgramInterest = models.ProgramInterest(program)
	p.PreferredContactMethod = models.ContactMethod(contact)
	sub.Status = models.Status(status)
	sub.CreatedAt = createdAt.UTC()

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &sub.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", sub.ID, err)
		}
	}
	return &sub, nil
}

func isDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
