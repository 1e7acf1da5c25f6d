// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
)

const (
	// FallbackPrefix marks canned text so readers can tell it from a real answer.
	FallbackPrefix = "(AI unavailable — fallback)"

	FallbackSuggestion = FallbackPrefix + "\n" +
		"1. Toronto — Good for tech and business.\n" +
		"2. Melbourne — Strong universities.\n" +
		"3. Berlin — Affordable and practical.\n\n" +
		"Next step: Schedule a counseling call."

	FallbackChatReply = FallbackPrefix + " I can't reach the advisor right now. " +
		"Please try again in a moment or book a counseling call."

	SuggestionSystem = "You are a concise professional education consultant named StudyBuddy."
	ChatPersona      = "You are StudyBuddy, a helpful study abroad consultant. Be friendly and concise."

	DefaultTimeout = 30 * time.Second
)

// Suggestion is the text stored on a submission.
type Suggestion struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
	Provider string `json:"provider"`
}

// Reply is one assistant chat turn.
type Reply struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

type Options struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Gateway never returns an error: every provider failure becomes fallback text.
type Gateway struct {
	gen    Generator
	opts   Options
	logger logger.Logger
}

func New(gen Generator, opts Options, log logger.Logger) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Gateway{
		gen:    gen,
		opts:   opts,
		logger: logger.ForComponent(log, "gateway").WithFields(map[string]interface{}{"provider": gen.Name()}),
	}
}

// Provider names the configured generator.
func (g *Gateway) Provider() string {
	return g.gen.Name()
}

// Suggest asks for exactly three cities and one next step.
func (g *Gateway) Suggest(ctx context.Context, profile models.ApplicantProfile, answers models.PreInterviewAnswers, score int) Suggestion {
	req := Request{
		System:      SuggestionSystem,
		Prompt:      BuildSuggestionPrompt(profile, answers, score),
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}

	text, err := g.call(ctx, "suggest", req)
	if err != nil {
		return Suggestion{Text: FallbackSuggestion, Degraded: true, Provider: g.gen.Name()}
	}
	return Suggestion{Text: text, Provider: g.gen.Name()}
}

// ChatReply answers the latest user turn given the whole transcript.
// profileContext, when set, is appended to the persona instruction.
func (g *Gateway) ChatReply(ctx context.Context, transcript []models.ChatTurn, profileContext string) Reply {
	system := ChatPersona
	if strings.TrimSpace(profileContext) != "" {
		system += "\nApplicant context:\n" + profileContext
	}

	req := Request{
		System:      system,
		Turns:       transcript,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}

	text, err := g.call(ctx, "chat", req)
	if err != nil {
		return Reply{Text: FallbackChatReply, Degraded: true}
	}
	return Reply{Text: text}
}

type result struct {
	text string
	err  error
}

// call bounds the provider with the configured timeout. A provider that ignores
// its context is abandoned; its goroutine finishes into a buffered channel.
func (g *Gateway) call(ctx context.Context, kind string, req Request) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := g.gen.Generate(ctx, req)
		done <- result{text: strings.TrimSpace(text), err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err == nil && res.text == "" {
		res.err = ErrEmptyResponse
	}

	metrics.GatewayDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if res.err != nil {
		stdErr := apperrors.NewGatewayFailedError(g.gen.Name(), res.err)
		if errors.Is(res.err, context.DeadlineExceeded) {
			stdErr = apperrors.NewGatewayTimeoutError(g.gen.Name())
		}
		g.logger.Warn("Provider call failed, using fallback", map[string]interface{}{
			"kind":      kind,
			"errorCode": string(stdErr.Code),
			"error":     res.err.Error(),
		})
		metrics.GatewayRequests.WithLabelValues(kind, "fallback").Inc()
		return "", stdErr
	}

	metrics.GatewayRequests.WithLabelValues(kind, "ok").Inc()
	return res.text, nil
}

// BuildSuggestionPrompt embeds the profile, answers and band in the request.
func BuildSuggestionPrompt(profile models.ApplicantProfile, answers models.PreInterviewAnswers, score int) string {
	var b strings.Builder
	b.WriteString("You are StudyBuddy, a concise education consultant.\n")
	b.WriteString("Student details:\n")
	fmt.Fprintf(&b, "Name: %s\n", profile.FullName)
	fmt.Fprintf(&b, "Country: %s\n", profile.CountryOfOrigin)
	fmt.Fprintf(&b, "Program: %s\n", profile.ProgramInterest)
	fmt.Fprintf(&b, "Preferred cities: %s\n", profile.PreferredCities)
	fmt.Fprintf(&b, "Qualification: %s\n", profile.CurrentQualification)
	fmt.Fprintf(&b, "Intake: %s\n", profile.TargetIntake)
	fmt.Fprintf(&b, "Budget: %s\n", profile.BudgetEstimate)
	fmt.Fprintf(&b, "Motivation: %s\n", answers.Motivation)
	fmt.Fprintf(&b, "IELTS: %s\n", answers.IELTSScore)
	fmt.Fprintf(&b, "Work Experience: %s\n", answers.WorkExperienceYears)
	fmt.Fprintf(&b, "Score: %d (%s)\n\n", score, scoring.Classify(score))
	b.WriteString("Task:\n")
	b.WriteString("1. Suggest exactly 3 study-abroad cities with one-line reasons.\n")
	b.WriteString("2. Give one short next step.\n")
	return b.String()
}

// ProfileContext renders a short applicant summary for the chat persona.
func ProfileContext(profile models.ApplicantProfile, score int) string {
	return fmt.Sprintf("Name: %s; Country: %s; Program: %s; Preferred cities: %s; Score: %d (%s)",
		profile.FullName, profile.CountryOfOrigin, profile.ProgramInterest,
		profile.PreferredCities, score, scoring.Classify(score))
}
