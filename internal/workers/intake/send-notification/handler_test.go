// internal/workers/intake/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"
	"time"

	awsclient "studybuddy/internal/common/aws"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type recordingSender struct {
	to, subject, body string
	err               error
}

func (r *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return r.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:  true,
		SMSEnabled:    true,
		EmailProvider: "ses",
		BookingLink:   "https://calendly.com/studybuddy/mock",
		Timeout:       5 * time.Second,
	}
}

func createTestInput(contact models.ContactMethod) *Input {
	return &Input{
		SubmissionID: "sub-001",
		Profile: models.ApplicantProfile{
			FullName:               "Asha",
			Email:                  "asha@example.com",
			Phone:                  "+919800000000",
			PreferredContactMethod: contact,
			Consent:                true,
		},
		Score:      80,
		Band:       models.BandHigh,
		Suggestion: "1. Dublin\n2. Lyon\n3. Porto",
	}
}

func okSES(t *testing.T, got **ses.SendEmailInput) *MockSESService {
	return &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			*got = params
			return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	var email *ses.SendEmailInput
	var sms *sns.PublishInput
	snsMock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			sms = params
			return &sns.PublishOutput{}, nil
		},
	}

	h := NewHandler(createTestConfig(),
		awsclient.NewSESClientWith(okSES(t, &email), "hello@studybuddy.test"),
		awsclient.NewSNSClientWith(snsMock, ""),
		logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput(models.ContactPhone))
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, out.NotificationStatus)
	assert.Equal(t, models.NotificationSent, out.EmailStatus)
	assert.Equal(t, models.NotificationSent, out.SMSStatus)
	assert.False(t, out.SentAt.IsZero())

	require.NotNil(t, email)
	assert.Contains(t, aws.ToString(email.Message.Body.Text.Data), "80 (High)")
	assert.Contains(t, aws.ToString(email.Message.Body.Text.Data), "calendly.com")
	require.NotNil(t, sms)
	assert.Equal(t, "+919800000000", aws.ToString(sms.PhoneNumber))
}

func TestHandler_Execute_EmailPreferredSkipsSMS(t *testing.T) {
	var email *ses.SendEmailInput
	snsMock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			t.Fatal("sms must not be sent to an email-preferring applicant")
			return nil, nil
		},
	}

	h := NewHandler(createTestConfig(),
		awsclient.NewSESClientWith(okSES(t, &email), "hello@studybuddy.test"),
		awsclient.NewSNSClientWith(snsMock, ""),
		logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput(models.ContactEmail))
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, out.EmailStatus)
	assert.Equal(t, models.NotificationDisabled, out.SMSStatus)
}

func TestHandler_Notify_Disabled(t *testing.T) {
	sender := &recordingSender{}
	h := NewHandler(&Config{Timeout: time.Second}, sender, nil, logger.NewNoOpLogger())

	status := h.Notify(context.Background(), models.Message{To: "a@b.c", Subject: "s", Body: "b"})
	assert.Equal(t, models.NotificationDisabled, status)
	assert.Empty(t, sender.to)
}

func TestHandler_Notify_ErrorIsReportedNotReturned(t *testing.T) {
	sender := &recordingSender{err: errors.New("535 authentication failed")}
	cfg := createTestConfig()
	cfg.SMSEnabled = false
	h := NewHandler(cfg, sender, nil, logger.NewNoOpLogger())

	status := h.Notify(context.Background(), models.Message{To: "a@b.c", Subject: "s", Body: "b"})
	assert.Equal(t, "error: 535 authentication failed", status)
	assert.Equal(t, "a@b.c", sender.to)
}

func TestHandler_Notify_SMSRescuesFailedEmail(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	snsMock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{}, nil
		},
	}
	h := NewHandler(createTestConfig(), sender, awsclient.NewSNSClientWith(snsMock, ""), logger.NewNoOpLogger())

	status := h.Notify(context.Background(), models.Message{To: "a@b.c", Phone: "+1555", SMS: "hi"})
	assert.Equal(t, models.NotificationSent, status)
}

func TestBuildMessage(t *testing.T) {
	in := createTestInput(models.ContactEmail)
	msg := BuildMessage(in.Profile, in.Score, in.Band, in.Suggestion, "")

	assert.Equal(t, "asha@example.com", msg.To)
	assert.Empty(t, msg.Phone)
	assert.Contains(t, msg.Body, "Hi Asha")
	assert.Contains(t, msg.Body, "1. Dublin")
	assert.NotContains(t, msg.Body, "Schedule a mock interview")
	assert.Contains(t, msg.SMS, "80 (High)")
}
