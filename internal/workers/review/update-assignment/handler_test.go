// internal/workers/review/update-assignment/handler_test.go
package updateassignment

import (
	"context"
	"testing"

	"studybuddy/internal/common/config"
	"studybuddy/internal/common/database"
	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/models"
	"studybuddy/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster = []string{"Counselor A", "Counselor B", "Counselor C"}

func newSQLiteStore(t *testing.T) *store.SQLStore {
	t.Helper()
	db, err := database.NewSQL(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: t.TempDir() + "/assign.db"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	return store.NewSQLStore(db, logger.NewNoOpLogger())
}

func seed(t *testing.T, st *store.SQLStore, id string) {
	t.Helper()
	require.NoError(t, st.Insert(context.Background(), &models.Submission{
		ID:      id,
		Profile: models.ApplicantProfile{FullName: "Asha", Email: "asha@example.com", Consent: true},
		Score:   80,
	}))
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.Status) *models.Status { return &s }

func TestHandler_Execute_AssignAndMove(t *testing.T) {
	st := newSQLiteStore(t)
	seed(t, st, "sub-1")
	h := NewHandler(LoadConfig(roster), st, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		SubmissionID: "sub-1",
		Counselor:    strPtr("Counselor B"),
		Status:       statusPtr(models.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, "Counselor B", out.Counselor)
	assert.Equal(t, models.StatusInProgress, out.Status)

	// status only; counselor stays
	out, err = h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Status: statusPtr(models.StatusClosed)})
	require.NoError(t, err)
	assert.Equal(t, "Counselor B", out.Counselor)
	assert.Equal(t, models.StatusClosed, out.Status)

	// unassign
	out, err = h.Execute(context.Background(), &Input{SubmissionID: "sub-1", Counselor: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, models.Unassigned, out.Counselor)
}

func TestHandler_Apply_Rejects(t *testing.T) {
	st := newSQLiteStore(t)
	seed(t, st, "sub-1")
	h := NewHandler(LoadConfig(roster), st, logger.NewNoOpLogger())

	tests := []struct {
		name   string
		id     string
		update models.AssignmentUpdate
		code   apperrors.ErrorCode
	}{
		{"unknown counselor", "sub-1", models.AssignmentUpdate{Counselor: strPtr("Counselor Z")}, apperrors.ErrCodeInvalidAssignment},
		{"unknown status", "sub-1", models.AssignmentUpdate{Status: statusPtr("Archived")}, apperrors.ErrCodeInvalidAssignment},
		{"missing id", "nope", models.AssignmentUpdate{Status: statusPtr(models.StatusClosed)}, apperrors.ErrCodeSubmissionNotFound},
		{"missing id empty update", "nope", models.AssignmentUpdate{}, apperrors.ErrCodeSubmissionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Apply(context.Background(), tt.id, tt.update)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.AsStandard(err).Code)
		})
	}

	got, err := st.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, models.Unassigned, got.Counselor)
}
