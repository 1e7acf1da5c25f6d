// Package intake runs a submission through Validate, Score, Suggest, Persist
// and Notify, in that order.
package intake

import (
	"context"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/common/observability"
	"studybuddy/internal/gateway"
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
	createsubmission "studybuddy/internal/workers/intake/create-submission"
	sendnotification "studybuddy/internal/workers/intake/send-notification"

	"golang.org/x/sync/errgroup"
)

type Validator interface {
	Validate(profile *models.ApplicantProfile) error
}

type Suggester interface {
	Suggest(ctx context.Context, profile models.ApplicantProfile, answers models.PreInterviewAnswers, score int) gateway.Suggestion
}

type Creator interface {
	Create(ctx context.Context, input *createsubmission.Input) (*models.Submission, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg models.Message) string
}

// Indexer mirrors stored submissions into the search index.
type Indexer interface {
	Index(ctx context.Context, sub *models.Submission) error
}

// DefaultPersistTimeout bounds the store write and the post-persist side
// effects, which run detached from the caller's deadline.
const DefaultPersistTimeout = 10 * time.Second

type Deps struct {
	Validator Validator
	Suggester Suggester
	Creator   Creator
	Notifier  Notifier
	// Indexer is optional.
	Indexer       Indexer
	Observability *observability.Observability
	// PersistTimeout defaults to DefaultPersistTimeout.
	PersistTimeout time.Duration
}

type Request struct {
	Profile models.ApplicantProfile    `json:"profile"`
	Answers models.PreInterviewAnswers `json:"answers"`
}

type Result struct {
	Submission         *models.Submission `json:"submission"`
	Band               models.Band        `json:"band"`
	ScoreBreakdown     scoring.Breakdown  `json:"scoreBreakdown"`
	NotificationStatus string             `json:"notification"`
	BookingLink        string             `json:"bookingLink,omitempty"`
}

type Workflow struct {
	deps        Deps
	bookingLink string
	logger      logger.Logger
}

func New(deps Deps, bookingLink string, log logger.Logger) *Workflow {
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = DefaultPersistTimeout
	}
	return &Workflow{
		deps:        deps,
		bookingLink: bookingLink,
		logger:      logger.ForComponent(log, "intake"),
	}
}

// Submit validates the request and, when valid, always persists exactly one
// record. Only validation and storage failures are returned. Persistence
// still runs when the caller's context expired during the suggestion call.
func (w *Workflow) Submit(ctx context.Context, req Request) (*Result, error) {
	ctx, span := w.deps.Observability.StartSpan(ctx, "intake.submit")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	profile, answers := req.Profile, req.Answers
	models.ReconcileBudget(&profile, &answers)

	if err = w.step(ctx, "validate", func(ctx context.Context) error {
		return w.deps.Validator.Validate(&profile)
	}); err != nil {
		metrics.IntakeRejected.Inc()
		return nil, err
	}

	var breakdown scoring.Breakdown
	_ = w.step(ctx, "score", func(context.Context) error {
		breakdown = scoring.Compute(answers)
		return nil
	})
	score := breakdown.Total()
	band := scoring.Classify(score)

	var suggestion gateway.Suggestion
	_ = w.step(ctx, "suggest", func(ctx context.Context) error {
		suggestion = w.deps.Suggester.Suggest(ctx, profile, answers, score)
		return nil
	})

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.deps.PersistTimeout)
	defer cancel()

	var sub *models.Submission
	if err = w.step(persistCtx, "persist", func(ctx context.Context) error {
		var cerr error
		sub, cerr = w.deps.Creator.Create(ctx, &createsubmission.Input{
			Profile:            profile,
			Answers:            answers,
			Score:              score,
			Suggestion:         suggestion.Text,
			SuggestionDegraded: suggestion.Degraded,
		})
		return cerr
	}); err != nil {
		return nil, err
	}

	status := w.afterPersist(persistCtx, sub, band)

	w.logger.Info("intake completed", map[string]interface{}{
		"submissionId": sub.ID,
		"score":        score,
		"band":         band,
		"degraded":     sub.SuggestionDegraded,
		"notification": status,
	})

	return &Result{
		Submission:         sub,
		Band:               band,
		ScoreBreakdown:     breakdown,
		NotificationStatus: status,
		BookingLink:        w.bookingLink,
	}, nil
}

// afterPersist notifies the applicant and indexes the record concurrently.
// Neither can fail the intake.
func (w *Workflow) afterPersist(ctx context.Context, sub *models.Submission, band models.Band) string {
	status := models.NotificationDisabled
	var g errgroup.Group

	if w.deps.Notifier != nil {
		g.Go(func() error {
			_ = w.step(ctx, "notify", func(ctx context.Context) error {
				msg := sendnotification.BuildMessage(sub.Profile, sub.Score, band, sub.Suggestion, w.bookingLink)
				status = w.deps.Notifier.Notify(ctx, msg)
				return nil
			})
			return nil
		})
	}

	if w.deps.Indexer != nil {
		g.Go(func() error {
			_ = w.step(ctx, "index", func(ctx context.Context) error {
				if err := w.deps.Indexer.Index(ctx, sub); err != nil {
					stdErr := apperrors.NewSearchIndexFailedError(sub.ID, err)
					w.logger.Warn("search indexing failed", map[string]interface{}{
						"submissionId": sub.ID,
						"errorCode":    string(stdErr.Code),
						"error":        err.Error(),
					})
					return stdErr
				}
				return nil
			})
			return nil
		})
	}

	_ = g.Wait()
	return status
}

func (w *Workflow) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := w.deps.Observability.StartSpan(ctx, "intake."+name)
	start := time.Now()

	err := fn(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	w.deps.Observability.RecordStep(ctx, name, time.Since(start), outcome)
	observability.EndSpan(span, err)
	return err
}
