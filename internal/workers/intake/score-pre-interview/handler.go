// internal/workers/intake/score-pre-interview/handler.go
package scorepreinterview

import (
	"context"
	"encoding/json"

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
	TaskType = "studybuddy-score-pre-interview"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
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

	output, _ := h.execute(ctx, &input)
	h.completeJob(ctx, client, job, output)
}

// execute never fails: unparseable answers simply contribute nothing.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	answers := input.Answers
	if input.Profile != nil {
		profile := *input.Profile
		models.ReconcileBudget(&profile, &answers)
	}
	breakdown := scoring.Compute(answers)
	score := breakdown.Total()
	band := scoring.Classify(score)

	h.logger.Info("pre-interview score calculated", map[string]interface{}{
		"submissionRef": input.SubmissionRef,
		"score":         score,
		"band":          band,
		"breakdown":     breakdown,
	})

	return &Output{
		Score:          score,
		Band:           band,
		ScoreBreakdown: breakdown,
	}, nil
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
