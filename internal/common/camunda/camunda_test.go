package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy/internal/common/config"
	"studybuddy/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{MaxRetries: 4, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewTestLogger(t), "probe", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewNoOpLogger(), "probe", func(context.Context) error {
		calls++
		return errors.New("permission denied")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "probe failed")
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry, logger.NewNoOpLogger(), "probe", func(context.Context) error {
		calls++
		return errors.New("rpc error: code = Unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries, calls)
}

func TestRetryWithBackoff_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := RetryConfig{MaxRetries: 5, InitialDelay: time.Hour}
	err := RetryWithBackoff(ctx, slow, logger.NewNoOpLogger(), "probe", func(context.Context) error {
		return errors.New("i/o timeout")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("context deadline exceeded")))
	assert.True(t, IsRetryable(errors.New("lookup zeebe: no such host")))
	assert.False(t, IsRetryable(errors.New("NOT_FOUND")))
}

type noopHandler struct{}

func (noopHandler) Handle(worker.JobClient, entities.Job) {}

func TestWorkerSet_DisabledWorkerIsSkipped(t *testing.T) {
	set := NewWorkerSet(nil, logger.NewNoOpLogger())
	assert.False(t, set.Start("studybuddy-score-pre-interview", config.WorkerConfig{Enabled: false}, noopHandler{}))
	assert.Empty(t, set.Running())
	set.Stop()
}
