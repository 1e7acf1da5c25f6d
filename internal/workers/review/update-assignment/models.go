// internal/workers/review/update-assignment/models.go
package updateassignment

import "studybuddy/internal/models"

type Input struct {
	SubmissionID string         `json:"submissionId"`
	Counselor    *string        `json:"counselor,omitempty"`
	Status       *models.Status `json:"status,omitempty"`
}

type Output struct {
	SubmissionID string        `json:"submissionId"`
	Counselor    string        `json:"counselor"`
	Status       models.Status `json:"status"`
}
