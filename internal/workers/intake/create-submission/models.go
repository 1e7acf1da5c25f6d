// internal/workers/intake/create-submission/models.go
package createsubmission

import (
	"time"

	"studybuddy/internal/models"
)

type Input struct {
	Profile            models.ApplicantProfile    `json:"profile"`
	Answers            models.PreInterviewAnswers `json:"answers"`
	Score              int                        `json:"score"`
	Suggestion         string                     `json:"suggestion"`
	SuggestionDegraded bool                       `json:"suggestionDegraded"`
}

type Output struct {
	SubmissionID string        `json:"submissionId"`
	Status       models.Status `json:"status"`
	Counselor    string        `json:"counselor"`
	CreatedAt    time.Time     `json:"createdAt"`
}
