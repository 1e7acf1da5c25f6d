// Package scoring computes the pre-interview score from intake answers.
package scoring

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"studybuddy/internal/models"
)

// MaxScore is the cap applied to the summed bands.
const MaxScore = 100

// Breakdown is the per-band contribution to a score.
type Breakdown struct {
	IELTS      int `json:"ielts"`
	Work       int `json:"work"`
	Motivation int `json:"motivation"`
	Budget     int `json:"budget"`
}

// Total is the capped sum of all bands.
func (b Breakdown) Total() int {
	sum := b.IELTS + b.Work + b.Motivation + b.Budget
	if sum > MaxScore {
		return MaxScore
	}
	return sum
}

// ParseNumber parses a numeric text field. Blank, malformed and non-finite
// values report ok=false and must contribute nothing.
func ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Score is total: any unparsable field contributes 0.
func Score(answers models.PreInterviewAnswers) int {
	return Compute(answers).Total()
}

// Compute returns the band contributions for answers.
func Compute(answers models.PreInterviewAnswers) Breakdown {
	return Breakdown{
		IELTS:      ieltsPoints(answers.IELTSScore),
		Work:       workPoints(answers.WorkExperienceYears),
		Motivation: motivationPoints(answers.Motivation),
		Budget:     budgetPoints(answers.BudgetEstimate),
	}
}

func ieltsPoints(text string) int {
	v, ok := ParseNumber(text)
	switch {
	case !ok:
		return 0
	case v >= 7.0:
		return 30
	case v >= 6.0:
		return 20
	case v > 0:
		return 10
	default:
		return 0
	}
}

func workPoints(text string) int {
	w, ok := ParseNumber(text)
	switch {
	case !ok:
		return 0
	case w >= 3:
		return 25
	case w >= 1:
		return 15
	default:
		return 0
	}
}

// motivation length is counted in characters, not bytes
func motivationPoints(text string) int {
	l := utf8.RuneCountInString(strings.TrimSpace(text))
	switch {
	case l > 400:
		return 25
	case l > 200:
		return 15
	case l > 50:
		return 5
	default:
		return 0
	}
}

func budgetPoints(text string) int {
	b, ok := ParseNumber(text)
	if ok && b >= 20000 {
		return 10
	}
	return 0
}

// Classify maps a score to its band. Lower bounds are inclusive.
func Classify(score int) models.Band {
	switch {
	case score >= 75:
		return models.BandHigh
	case score >= 50:
		return models.BandMedium
	default:
		return models.BandLow
	}
}
