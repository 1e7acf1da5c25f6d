// internal/workers/intake/send-notification/models.go
package sendnotification

import (
	"time"

	"studybuddy/internal/models"
)

type Input struct {
	SubmissionID string                  `json:"submissionId"`
	Profile      models.ApplicantProfile `json:"profile"`
	Score        int                     `json:"score"`
	Band         models.Band             `json:"band"`
	Suggestion   string                  `json:"suggestion"`
}

type Output struct {
	NotificationStatus string    `json:"notificationStatus"`
	EmailStatus        string    `json:"emailStatus"`
	SMSStatus          string    `json:"smsStatus"`
	SentAt             time.Time `json:"sentAt"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
