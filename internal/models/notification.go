// internal/models/notification.go
package models

// NotificationStatus values reported back to the intake caller. A failed
// delivery is reported as NotificationErrorPrefix followed by the cause.
const (
	NotificationSent        = "sent"
	NotificationDisabled    = "disabled"
	NotificationErrorPrefix = "error: "
)

// Message is an outbound notification to an applicant. SMS is only sent
// when Phone is set.
type Message struct {
	To      string `json:"to"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SMS     string `json:"sms,omitempty"`
}
