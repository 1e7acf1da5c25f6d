package review

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"studybuddy/internal/common/auth"
	"studybuddy/internal/common/config"
	"studybuddy/internal/common/database"
	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/models"
	"studybuddy/internal/store"
	updateassignment "studybuddy/internal/workers/review/update-assignment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster = []string{"Counselor A", "Counselor B", "Counselor C"}

func setupStore(t *testing.T) *store.SQLStore {
	t.Helper()
	db, err := database.NewSQL(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "review.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	return store.NewSQLStore(db, logger.NewNoOpLogger())
}

func seed(t *testing.T, st *store.SQLStore, id, name, country string, program models.ProgramInterest, score int, counselor string, age time.Duration) {
	t.Helper()
	require.NoError(t, st.Insert(context.Background(), &models.Submission{
		ID: id,
		Profile: models.ApplicantProfile{
			FullName:        name,
			Email:           id + "@x.com",
			CountryOfOrigin: country,
			ProgramInterest: program,
			Consent:         true,
		},
		Score:     score,
		Counselor: counselor,
		CreatedAt: time.Now().UTC().Add(-age),
	}))
}

func newAdmin(t *testing.T, st *store.SQLStore, searcher Searcher) *Admin {
	gate := auth.NewGate("adminpass", "counselorpass", roster)
	assigner := updateassignment.NewHandler(updateassignment.LoadConfig(roster), st, logger.NewNoOpLogger())
	return NewAdmin(gate, st, assigner, searcher, logger.NewTestLogger(t))
}

func TestComputeStats(t *testing.T) {
	subs := []models.Submission{
		{Score: 90, Profile: models.ApplicantProfile{ProgramInterest: models.ProgramMasters, CountryOfOrigin: "India"}},
		{Score: 75, Profile: models.ApplicantProfile{ProgramInterest: models.ProgramMasters, CountryOfOrigin: "Kenya"}},
		{Score: 50, Profile: models.ApplicantProfile{ProgramInterest: models.ProgramPhD, CountryOfOrigin: "India"}},
		{Score: 10},
	}

	stats := ComputeStats(subs)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 56.3, stats.MeanScore)
	assert.Equal(t, 2, stats.HighScorers)
	assert.Equal(t, map[string]int{"Masters": 2, "PhD": 1, Unspecified: 1}, stats.Programs)
	assert.Equal(t, map[string]int{"India": 2, "Kenya": 1, Unspecified: 1}, stats.Countries)
	assert.Equal(t, map[models.Band]int{models.BandHigh: 2, models.BandMedium: 1, models.BandLow: 1}, stats.Bands)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.MeanScore)
	assert.Empty(t, stats.Programs)
}

func TestDashboard_Stats(t *testing.T) {
	st := setupStore(t)
	seed(t, st, "a", "Asha", "India", models.ProgramMasters, 90, "", time.Hour)
	seed(t, st, "b", "Ben", "Kenya", models.ProgramBachelors, 40, "", time.Minute)

	stats, err := NewDashboard(st).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 65.0, stats.MeanScore)
	assert.Equal(t, 1, stats.HighScorers)
}

func TestAdmin_RequiresSecret(t *testing.T) {
	st := setupStore(t)
	admin := newAdmin(t, st, nil)
	ctx := context.Background()

	_, err := admin.List(ctx, "wrong")
	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.AsStandard(err).Code)

	_, err = admin.Update(ctx, "", "a", models.AssignmentUpdate{})
	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.AsStandard(err).Code)

	var buf bytes.Buffer
	err = admin.ExportCSV(ctx, "nope", &buf)
	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.AsStandard(err).Code)
	assert.Zero(t, buf.Len())
}

func TestAdmin_UpdateThenCounselorSeesIt(t *testing.T) {
	st := setupStore(t)
	seed(t, st, "a", "Asha", "India", models.ProgramMasters, 90, "", time.Hour)
	seed(t, st, "b", "Ben", "Kenya", models.ProgramBachelors, 40, "", time.Minute)
	admin := newAdmin(t, st, nil)
	ctx := context.Background()

	counselor := "Counselor A"
	status := models.StatusInProgress
	sub, err := admin.Update(ctx, "adminpass", "a", models.AssignmentUpdate{Counselor: &counselor, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Counselor A", sub.Counselor)

	view := NewCounselorView(auth.NewGate("adminpass", "counselorpass", roster), st)
	mine, err := view.List(ctx, "counselorpass", "Counselor A")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].ID)

	others, err := view.List(ctx, "counselorpass", "Counselor B")
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = view.List(ctx, "counselorpass", "Counselor Z")
	assert.Equal(t, apperrors.ErrCodeAccessDenied, apperrors.AsStandard(err).Code)
}

func TestAdmin_UpdateUnknownID(t *testing.T) {
	st := setupStore(t)
	admin := newAdmin(t, st, nil)

	status := models.StatusClosed
	_, err := admin.Update(context.Background(), "adminpass", "missing", models.AssignmentUpdate{Status: &status})
	assert.Equal(t, apperrors.ErrCodeSubmissionNotFound, apperrors.AsStandard(err).Code)
}

func TestAdmin_ExportAndReport(t *testing.T) {
	st := setupStore(t)
	seed(t, st, "a", "Asha", "India", models.ProgramMasters, 90, "", time.Hour)
	admin := newAdmin(t, st, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, admin.ExportCSV(ctx, "adminpass", &buf))
	assert.Contains(t, buf.String(), "a@x.com")

	report, err := admin.Report(ctx, "adminpass", "a")
	require.NoError(t, err)
	assert.Contains(t, report, "full_name: Asha")

	_, err = admin.Report(ctx, "adminpass", "zzz")
	assert.Equal(t, apperrors.ErrCodeSubmissionNotFound, apperrors.AsStandard(err).Code)
}

type fakeSearcher struct {
	ids []string
	err error
}

func (f *fakeSearcher) Search(ctx context.Context, term string, size int) ([]string, error) {
	return f.ids, f.err
}

// brokenGetStore fails every point read as a dropped connection would.
type brokenGetStore struct {
	*store.SQLStore
}

func (b *brokenGetStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	return nil, errors.New("driver: bad connection")
}

func TestAdmin_Search(t *testing.T) {
	st := setupStore(t)
	seed(t, st, "a", "Asha", "India", models.ProgramMasters, 90, "", time.Hour)
	seed(t, st, "b", "Ben", "Kenya", models.ProgramBachelors, 40, "", time.Minute)
	ctx := context.Background()

	t.Run("index order wins", func(t *testing.T) {
		admin := newAdmin(t, st, &fakeSearcher{ids: []string{"b", "ghost", "a"}})
		subs, err := admin.Search(ctx, "adminpass", "anything")
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, "b", subs[0].ID)
		assert.Equal(t, "a", subs[1].ID)
	})

	t.Run("index failure falls back to sql", func(t *testing.T) {
		admin := newAdmin(t, st, &fakeSearcher{err: errors.New("cluster red")})
		subs, err := admin.Search(ctx, "adminpass", "kenya")
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "b", subs[0].ID)
	})

	t.Run("empty index falls back to sql", func(t *testing.T) {
		admin := newAdmin(t, st, &fakeSearcher{})
		subs, err := admin.Search(ctx, "adminpass", "kenya")
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "b", subs[0].ID)
	})

	t.Run("store read failure falls back to sql", func(t *testing.T) {
		gate := auth.NewGate("adminpass", "counselorpass", roster)
		broken := &brokenGetStore{SQLStore: st}
		admin := NewAdmin(gate, broken, nil, &fakeSearcher{ids: []string{"a"}}, logger.NewTestLogger(t))
		subs, err := admin.Search(ctx, "adminpass", "kenya")
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "b", subs[0].ID)
	})

	t.Run("blank term lists all", func(t *testing.T) {
		admin := newAdmin(t, st, nil)
		subs, err := admin.Search(ctx, "adminpass", "  ")
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	})
}
