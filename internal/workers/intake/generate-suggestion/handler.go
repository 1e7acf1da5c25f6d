// internal/workers/intake/generate-suggestion/handler.go
package generatesuggestion

import (
	"context"
	"encoding/json"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/common/validation"
	"studybuddy/internal/gateway"
	"studybuddy/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "studybuddy-generate-suggestion"
)

// Suggester is satisfied by *gateway.Gateway.
type Suggester interface {
	Suggest(ctx context.Context, profile models.ApplicantProfile, answers models.PreInterviewAnswers, score int) gateway.Suggestion
}

type Handler struct {
	config       *Config
	suggester    Suggester
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, suggester Suggester, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		suggester:    suggester,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	s := h.suggester.Suggest(ctx, input.Profile, input.Answers, input.Score)

	h.logger.Info("suggestion generated", map[string]interface{}{
		"degraded": s.Degraded,
		"provider": s.Provider,
		"length":   len(s.Text),
	})

	return &Output{
		Suggestion:         s.Text,
		SuggestionDegraded: s.Degraded,
		SuggestionProvider: s.Provider,
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
