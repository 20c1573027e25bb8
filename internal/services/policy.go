package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RetryPolicy controls how many times a transient inference failure is retried.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

const defaultMaxRetryDelay = 30 * time.Second

// sleep is swapped out in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewLimiter returns a token bucket limiter, or nil when rps <= 0.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// ResilientClient wraps a GenerativeClient with rate limiting and retries on
// transient failures. The wrapped client is still called one attempt at a time.
type ResilientClient struct {
	next    GenerativeClient
	limiter *rate.Limiter
	policy  RetryPolicy
	logger  *zap.Logger
}

var _ GenerativeClient = (*ResilientClient)(nil)

func NewResilientClient(next GenerativeClient, limiter *rate.Limiter, policy RetryPolicy, log *zap.Logger) *ResilientClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaultMaxRetryDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResilientClient{next: next, limiter: limiter, policy: policy, logger: log}
}

func (c *ResilientClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	err := c.do(ctx, "complete", func() error {
		var err error
		out, err = c.next.Complete(ctx, prompt)
		return err
	})
	return out, err
}

func (c *ResilientClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := c.do(ctx, "embed", func() error {
		var err error
		out, err = c.next.Embed(ctx, text)
		return err
	})
	return out, err
}

func (c *ResilientClient) do(ctx context.Context, op string, call func() error) error {
	delay := c.policy.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == c.policy.MaxAttempts {
			break
		}

		c.logger.Warn("inference call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}
		delay *= 2
		if delay > c.policy.MaxDelay {
			delay = c.policy.MaxDelay
		}
	}

	return lastErr
}

// IsTransient reports whether err is worth retrying: transport failures,
// 429 and 5xx responses.
func IsTransient(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch {
	case svcErr.StatusCode == 0:
		return true
	case svcErr.StatusCode == http.StatusTooManyRequests:
		return true
	case svcErr.StatusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}
