// internal/workers/intake/validate-intake/models.go
package validateintake

import "studybuddy/internal/models"

type Input struct {
	Profile models.ApplicantProfile    `json:"profile"`
	Answers models.PreInterviewAnswers `json:"answers"`
}

type Output struct {
	Valid   bool                       `json:"valid"`
	Profile models.ApplicantProfile    `json:"profile"`
	Answers models.PreInterviewAnswers `json:"answers"`
}
