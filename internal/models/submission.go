// internal/models/submission.go
package models

import "time"

// Band is the qualitative label derived from a score.
type Band string

const (
	BandLow    Band = "Low"
	BandMedium Band = "Medium"
	BandHigh   Band = "High"
)

// Status tracks where a submission is in the counselling pipeline.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
)

var Statuses = []Status{StatusNew, StatusInProgress, StatusClosed}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Unassigned is the counselor value of a fresh submission.
const Unassigned = ""

// Submission is the persisted applicant record. Score, Suggestion, ID and
// CreatedAt are fixed at creation; only Counselor and Status change later.
type Submission struct {
	ID                 string              `json:"id"`
	Profile            ApplicantProfile    `json:"profile"`
	Answers            PreInterviewAnswers `json:"answers"`
	Score              int                 `json:"score"`
	Suggestion         string              `json:"suggestion"`
	SuggestionDegraded bool                `json:"suggestionDegraded"`
	Counselor          string              `json:"counselor"`
	Status             Status              `json:"status"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// AssignmentUpdate is a partial update; nil fields are left unchanged.
// An empty Counselor string unassigns the submission.
type AssignmentUpdate struct {
	Counselor *string `json:"counselor,omitempty"`
	Status    *Status `json:"status,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u AssignmentUpdate) IsEmpty() bool {
	return u.Counselor == nil && u.Status == nil
}
