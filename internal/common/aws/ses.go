// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var ErrMissingSender = errors.New("SES_SENDER_NOT_CONFIGURED")

// SESAPI is the part of the SES client the mailer calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESClient sends plain-text applicant emails through SES.
type SESClient struct {
	api  SESAPI
	from string
}

func NewSESClient(ctx context.Context, region, from string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSESClientWith(ses.NewFromConfig(cfg), from), nil
}

func NewSESClientWith(api SESAPI, from string) *SESClient {
	return &SESClient{api: api, from: from}
}

// Send delivers a single plain-text message to one recipient.
func (s *SESClient) Send(ctx context.Context, to, subject, body string) error {
	if s.from == "" {
		return ErrMissingSender
	}
	_, err := s.api.SendEmail(ctx, BuildEmailInput(s.from, to, subject, body))
	return err
}

func BuildEmailInput(from, to, subject, body string) *ses.SendEmailInput {
	return &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
		Source: aws.String(from),
	}
}
