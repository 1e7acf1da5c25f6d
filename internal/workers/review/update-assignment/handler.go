// internal/workers/review/update-assignment/handler.go
package updateassignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/common/validation"
	"studybuddy/internal/models"
	"studybuddy/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "studybuddy-update-assignment"
)

// Updater is the slice of store.Repository used for assignment changes.
type Updater interface {
	UpdateAssignment(ctx context.Context, id string, update models.AssignmentUpdate) error
	Get(ctx context.Context, id string) (*models.Submission, error)
}

type Handler struct {
	config       *Config
	store        Updater
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, st Updater, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig(nil)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        st,
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.Apply(ctx, input.SubmissionID, models.AssignmentUpdate{
		Counselor: input.Counselor,
		Status:    input.Status,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		SubmissionID: sub.ID,
		Counselor:    sub.Counselor,
		Status:       sub.Status,
	}, nil
}

// Apply validates the counselor and status values, writes them in a single
// statement and returns the stored record.
func (h *Handler) Apply(ctx context.Context, id string, update models.AssignmentUpdate) (*models.Submission, error) {
	if err := h.check(update); err != nil {
		return nil, err
	}

	if err := h.store.UpdateAssignment(ctx, id, update); err != nil {
		return nil, h.translate(id, "update_assignment", err)
	}

	sub, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, h.translate(id, "get_submission", err)
	}

	if !update.IsEmpty() {
		metrics.AssignmentsUpdated.Inc()
	}
	h.logger.Info("assignment updated", map[string]interface{}{
		"submissionId": id,
		"counselor":    sub.Counselor,
		"status":       sub.Status,
	})
	return sub, nil
}

func (h *Handler) check(update models.AssignmentUpdate) error {
	if update.Counselor != nil && *update.Counselor != models.Unassigned && !h.onRoster(*update.Counselor) {
		return apperrors.NewInvalidAssignmentError(fmt.Sprintf("unknown counselor %q", *update.Counselor))
	}
	if update.Status != nil && !update.Status.IsValid() {
		return apperrors.NewInvalidAssignmentError(fmt.Sprintf("unknown status %q", *update.Status))
	}
	return nil
}

func (h *Handler) onRoster(name string) bool {
	for _, c := range h.config.Counselors {
		if c == name {
			return true
		}
	}
	return false
}

func (h *Handler) translate(id, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	return apperrors.NewQueryExecutionFailedError(op, err)
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
