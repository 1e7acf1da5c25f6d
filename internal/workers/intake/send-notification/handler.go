// internal/workers/intake/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/common/validation"
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "studybuddy-send-notification"
)

// EmailSender is implemented by the SES and SMTP adapters.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender is implemented by the SNS adapter.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) error
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := validation.ValidateVariables(job.Variables, h.config.InputSchema); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewSchemaValidationFailedError(err.Error()))
		return
	}

	// delivery failures are reported in the output, never as job failures
	output, _ := h.execute(ctx, &input)
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	band := input.Band
	if band == "" {
		band = scoring.Classify(input.Score)
	}
	msg := BuildMessage(input.Profile, input.Score, band, input.Suggestion, h.config.BookingLink)
	out := h.deliver(ctx, msg)

	h.logger.Info("notification processed", map[string]interface{}{
		"submissionId": input.SubmissionID,
		"status":       out.NotificationStatus,
		"emailStatus":  out.EmailStatus,
		"smsStatus":    out.SMSStatus,
	})
	return out, nil
}

// Notify delivers msg on every enabled channel and returns the overall
// status: "sent" when any channel delivered, otherwise the first error, otherwise "disabled".
func (h *Handler) Notify(ctx context.Context, msg models.Message) string {
	return h.deliver(ctx, msg).NotificationStatus
}

func (h *Handler) deliver(ctx context.Context, msg models.Message) *Output {
	out := &Output{
		EmailStatus: h.sendEmail(ctx, msg),
		SMSStatus:   h.sendSMS(ctx, msg),
		SentAt:      h.now(),
	}

	switch {
	case out.EmailStatus == models.NotificationSent || out.SMSStatus == models.NotificationSent:
		out.NotificationStatus = models.NotificationSent
	case isError(out.EmailStatus):
		out.NotificationStatus = out.EmailStatus
	case isError(out.SMSStatus):
		out.NotificationStatus = out.SMSStatus
	default:
		out.NotificationStatus = models.NotificationDisabled
	}
	return out
}

func (h *Handler) sendEmail(ctx context.Context, msg models.Message) string {
	if !h.config.EmailEnabled || h.email == nil || msg.To == "" {
		return h.record(ChannelEmail, models.NotificationDisabled)
	}
	if err := h.email.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		stdErr := apperrors.NewNotificationSendFailedError(ChannelEmail, err)
		h.logger.Warn("email delivery failed", map[string]interface{}{
			"provider":  h.config.EmailProvider,
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return h.record(ChannelEmail, models.NotificationErrorPrefix+err.Error())
	}
	return h.record(ChannelEmail, models.NotificationSent)
}

func (h *Handler) sendSMS(ctx context.Context, msg models.Message) string {
	if !h.config.SMSEnabled || h.sms == nil || msg.Phone == "" {
		return h.record(ChannelSMS, models.NotificationDisabled)
	}
	body := msg.SMS
	if body == "" {
		body = msg.Subject
	}
	if err := h.sms.SendSMS(ctx, msg.Phone, body); err != nil {
		h.logger.Warn("sms delivery failed", map[string]interface{}{
			"errorCode": string(apperrors.ErrCodeNotificationSendFailed),
			"error":     err.Error(),
		})
		return h.record(ChannelSMS, models.NotificationErrorPrefix+err.Error())
	}
	return h.record(ChannelSMS, models.NotificationSent)
}

func (h *Handler) record(channel, status string) string {
	label := status
	if isError(status) {
		label = "error"
	}
	metrics.NotificationsSent.WithLabelValues(channel, label).Inc()
	return status
}

func isError(status string) bool {
	return strings.HasPrefix(status, models.NotificationErrorPrefix)
}

// BuildMessage renders the applicant email and the short SMS variant.
func BuildMessage(profile models.ApplicantProfile, score int, band models.Band, suggestion, bookingLink string) models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", profile.FullName)
	b.WriteString("Thanks for completing your StudyBuddy profile.\n\n")
	fmt.Fprintf(&b, "Your pre-interview score: %d (%s)\n\n", score, band)
	if suggestion != "" {
		b.WriteString("Our suggestions:\n")
		b.WriteString(suggestion)
		b.WriteString("\n\n")
	}
	if bookingLink != "" {
		fmt.Fprintf(&b, "Schedule a mock interview: %s\n\n", bookingLink)
	}
	b.WriteString("StudyBuddy")

	msg := models.Message{
		To:      profile.Email,
		Subject: "Your StudyBuddy profile score",
		Body:    b.String(),
		SMS:     fmt.Sprintf("StudyBuddy: your profile score is %d (%s). Check your email for suggestions.", score, band),
	}
	if profile.WantsPhoneContact() {
		msg.Phone = profile.Phone
	}
	return msg
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
