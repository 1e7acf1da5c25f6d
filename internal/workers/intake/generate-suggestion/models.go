// internal/workers/intake/generate-suggestion/models.go
package generatesuggestion

import "studybuddy/internal/models"

type Input struct {
	Profile models.ApplicantProfile    `json:"profile"`
	Answers models.PreInterviewAnswers `json:"answers"`
	Score   int                        `json:"score"`
}

type Output struct {
	Suggestion         string `json:"suggestion"`
	SuggestionDegraded bool   `json:"suggestionDegraded"`
	SuggestionProvider string `json:"suggestionProvider"`
}
