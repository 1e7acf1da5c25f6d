// Package review holds the read and update paths used by admins, counselors
// and the public dashboard.
package review

import (
	"context"
	"errors"
	"math"
	"strings"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
	"studybuddy/internal/store"
)

// HighScoreThreshold matches the High band lower bound.
const HighScoreThreshold = 75

// Unspecified buckets blank program and country values.
const Unspecified = "Unspecified"

type Stats struct {
	Total       int                 `json:"total"`
	MeanScore   float64             `json:"meanScore"`
	HighScorers int                 `json:"highScorers"`
	Programs    map[string]int      `json:"programs"`
	Countries   map[string]int      `json:"countries"`
	Bands       map[models.Band]int `json:"bands"`
}

// ComputeStats aggregates a snapshot of submissions. The mean is rounded to
// one decimal and is 0 when there are no rows.
func ComputeStats(subs []models.Submission) Stats {
	stats := Stats{
		Total:     len(subs),
		Programs:  map[string]int{},
		Countries: map[string]int{},
		Bands:     map[models.Band]int{models.BandLow: 0, models.BandMedium: 0, models.BandHigh: 0},
	}

	sum := 0
	for _, s := range subs {
		sum += s.Score
		if s.Score >= HighScoreThreshold {
			stats.HighScorers++
		}
		stats.Programs[bucket(string(s.Profile.ProgramInterest))]++
		stats.Countries[bucket(s.Profile.CountryOfOrigin)]++
		stats.Bands[scoring.Classify(s.Score)]++
	}
	if len(subs) > 0 {
		stats.MeanScore = math.Round(float64(sum)/float64(len(subs))*10) / 10
	}
	return stats
}

func bucket(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Unspecified
	}
	return v
}

type Lister interface {
	ListAll(ctx context.Context) ([]models.Submission, error)
}

// Dashboard is public and read-only.
type Dashboard struct {
	store Lister
}

func NewDashboard(st Lister) *Dashboard {
	return &Dashboard{store: st}
}

func (d *Dashboard) Stats(ctx context.Context) (*Stats, error) {
	subs, err := d.store.ListAll(ctx)
	if err != nil {
		return nil, storeError("list_all", "", err)
	}
	stats := ComputeStats(subs)
	return &stats, nil
}

func storeError(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	return apperrors.NewQueryExecutionFailedError(op, err)
}
