package scoring

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"studybuddy/internal/models"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"7.5", 7.5, true},
		{"  6 ", 6, true},
		{"", 0, false},
		{"seven", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-2", -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_IELTSBands(t *testing.T) {
	tests := []struct {
		ielts string
		want  int
	}{
		{"7.0", 30},
		{"8.5", 30},
		{"6.9", 20},
		{"6.0", 20},
		{"5.9", 10},
		{"0.5", 10},
		{"0", 0},
		{"-1", 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		t.Run(tt.ielts, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(models.PreInterviewAnswers{IELTSScore: tt.ielts}))
		})
	}
}

func TestScore_WorkBands(t *testing.T) {
	tests := []struct {
		work string
		want int
	}{
		{"3", 25},
		{"10", 25},
		{"2.9", 15},
		{"1", 15},
		{"0.9", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.work, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(models.PreInterviewAnswers{WorkExperienceYears: tt.work}))
		})
	}
}

func TestScore_MotivationBands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"401 chars", strings.Repeat("a", 401), 25},
		{"400 chars", strings.Repeat("a", 400), 15},
		{"201 chars", strings.Repeat("a", 201), 15},
		{"200 chars", strings.Repeat("a", 200), 5},
		{"51 chars", strings.Repeat("a", 51), 5},
		{"50 chars", strings.Repeat("a", 50), 0},
		{"padding is trimmed", "   " + strings.Repeat("a", 50) + "\n\n", 0},
		{"multibyte counts runes", strings.Repeat("é", 60), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(models.PreInterviewAnswers{Motivation: tt.text}))
		})
	}
}

func TestScore_Budget(t *testing.T) {
	assert.Equal(t, 10, Score(models.PreInterviewAnswers{BudgetEstimate: "20000"}))
	assert.Equal(t, 0, Score(models.PreInterviewAnswers{BudgetEstimate: "19999.99"}))
	assert.Equal(t, 0, Score(models.PreInterviewAnswers{BudgetEstimate: "$20,000"}))
}

func TestScore_EmptyAnswers(t *testing.T) {
	s := Score(models.PreInterviewAnswers{})
	assert.Equal(t, 0, s)
	assert.Equal(t, models.BandLow, Classify(s))
}

func TestScore_Maximum(t *testing.T) {
	answers := models.PreInterviewAnswers{
		IELTSScore:          "7.2",
		WorkExperienceYears: "4",
		Motivation:          strings.Repeat("x", 450),
		BudgetEstimate:      "25000",
	}

	want := Breakdown{IELTS: 30, Work: 25, Motivation: 25, Budget: 10}
	if diff := cmp.Diff(want, Compute(answers)); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 90, Score(answers))
	assert.Equal(t, models.BandHigh, Classify(90))
}

func TestBreakdown_TotalIsCapped(t *testing.T) {
	assert.Equal(t, MaxScore, Breakdown{IELTS: 60, Work: 50}.Total())
}

func TestScore_StaysInRange(t *testing.T) {
	inputs := []string{"", "-100", "0", "1e9", "abc", "6.5", "3", "20000"}
	for _, a := range inputs {
		for _, b := range inputs {
			s := Score(models.PreInterviewAnswers{IELTSScore: a, WorkExperienceYears: b, BudgetEstimate: a, Motivation: b})
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, MaxScore)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score int
		want  models.Band
	}{
		{0, models.BandLow},
		{49, models.BandLow},
		{50, models.BandMedium},
		{74, models.BandMedium},
		{75, models.BandHigh},
		{100, models.BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
		assert.Equal(t, Classify(tt.score), Classify(tt.score))
	}
}
