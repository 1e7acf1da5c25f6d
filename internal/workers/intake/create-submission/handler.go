// internal/workers/intake/create-submission/handler.go
package createsubmission

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/common/validation"
	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
	"studybuddy/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "studybuddy-create-submission"
)

// Inserter is the slice of store.Repository this worker writes through.
type Inserter interface {
	Insert(ctx context.Context, s *models.Submission) error
}

type Handler struct {
	config       *Config
	store        Inserter
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	newID        func() string
	now          func() time.Time
}

func NewHandler(config *Config, st Inserter, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        st,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		newID:        uuid.NewString,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Output{
		SubmissionID: sub.ID,
		Status:       sub.Status,
		Counselor:    sub.Counselor,
		CreatedAt:    sub.CreatedAt,
	}, nil
}

// Create persists a fresh, unassigned submission with status New.
func (h *Handler) Create(ctx context.Context, input *Input) (*models.Submission, error) {
	profile, answers := input.Profile, input.Answers
	models.ReconcileBudget(&profile, &answers)

	sub := &models.Submission{
		ID:                 h.newID(),
		Profile:            profile,
		Answers:            answers,
		Score:              input.Score,
		Suggestion:         input.Suggestion,
		SuggestionDegraded: input.SuggestionDegraded,
		Counselor:          models.Unassigned,
		Status:             models.StatusNew,
		CreatedAt:          h.now(),
	}

	if err := h.store.Insert(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, apperrors.NewDuplicateSubmissionError(sub.ID)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	band := scoring.Classify(sub.Score)
	metrics.SubmissionsCreated.WithLabelValues(string(band)).Inc()
	h.logger.Info("submission stored", map[string]interface{}{
		"submissionId": sub.ID,
		"score":        sub.Score,
		"band":         band,
		"degraded":     sub.SuggestionDegraded,
	})
	return sub, nil
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
