// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studybuddy/internal/common/config"
	"studybuddy/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connection retry and a health probe.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:   10,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// Connect dials the broker and confirms it with a topology request, retrying
// transient failures with exponential backoff.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (*Client, error) {
	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	var zc zbc.Client
	err := RetryWithBackoff(ctx, retry, log, "Zeebe client initialization", func(ctx context.Context) error {
		c, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: true,
		})
		if err != nil {
			return err
		}

		probeCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		if _, err := c.NewTopologyCommand().Send(probeCtx); err != nil {
			c.Close()
			return fmt.Errorf("broker %s: %w", cfg.BrokerAddress, err)
		}
		zc = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{client: zc, requestTimeout: requestTimeout}, nil
}

// Raw returns the underlying Zeebe client for opening job workers.
func (c *Client) Raw() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck performs a topology request against the broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// RetryWithBackoff runs operation until it succeeds, a non-transient error is
// returned, the attempts run out, or ctx is done.
func RetryWithBackoff(ctx context.Context, retry RetryConfig, log logger.Logger, operationName string, operation func(context.Context) error) error {
	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}
	log = logger.ForComponent(log, "retry")

	var err error
	delay := retry.InitialDelay
	for i := 0; i < retry.MaxRetries; i++ {
		err = operation(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || i == retry.MaxRetries-1 {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  retry.MaxRetries,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operationName, i+1, ctx.Err())
		}

		delay *= 2
		if retry.MaxDelay > 0 && delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, retry.MaxRetries, err)
}

// IsRetryable reports whether err looks like a transient connection failure.
func IsRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"no such host",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
