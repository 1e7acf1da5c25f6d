// internal/workers/intake/score-pre-interview/models.go
package scorepreinterview

import (
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
)

type Input struct {
	SubmissionRef string                     `json:"submissionRef,omitempty"`
	Answers       models.PreInterviewAnswers `json:"answers"`
	// Profile supplies the budget when the answers leave it blank.
	Profile *models.ApplicantProfile `json:"profile,omitempty"`
}

type Output struct {
	Score          int               `json:"score"`
	Band           models.Band       `json:"band"`
	ScoreBreakdown scoring.Breakdown `json:"scoreBreakdown"`
}
