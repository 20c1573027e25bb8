package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient returns errs[i] on call i and succeeds afterwards.
type scriptedClient struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *scriptedClient) next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func (s *scriptedClient) Complete(context.Context, string) (string, error) {
	if err := s.next(); err != nil {
		return "", err
	}
	return "ok", nil
}

func (s *scriptedClient) Embed(context.Context, string) ([]float32, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return []float32{1, 2}, nil
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	original := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { sleep = original })
	return &delays
}

func TestResilientClient_RetriesTransientErrors(t *testing.T) {
	delays := noSleep(t)

	inner := &scriptedClient{errs: []error{
		&ServiceError{StatusCode: http.StatusServiceUnavailable, Body: "overloaded"},
		&ServiceError{StatusCode: http.StatusTooManyRequests, Body: "slow down"},
	}}
	c := NewResilientClient(inner, nil, RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second}, zap.NewNop())

	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestResilientClient_StopsOnPermanentError(t *testing.T) {
	noSleep(t)

	inner := &scriptedClient{errs: []error{&ServiceError{StatusCode: http.StatusBadRequest, Body: "bad key"}}}
	c := NewResilientClient(inner, nil, RetryPolicy{MaxAttempts: 5}, nil)

	_, err := c.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, 1, inner.calls)

	malformed := &scriptedClient{errs: []error{ErrMalformedEnvelope}}
	c = NewResilientClient(malformed, nil, RetryPolicy{MaxAttempts: 5}, nil)
	_, err = c.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrMalformedEnvelope)
	assert.Equal(t, 1, malformed.calls)
}

func TestResilientClient_GivesUpAfterMaxAttempts(t *testing.T) {
	noSleep(t)

	transient := &ServiceError{Err: errors.New("connection reset")}
	inner := &scriptedClient{errs: []error{transient, transient, transient, transient}}
	c := NewResilientClient(inner, nil, RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond}, nil)

	_, err := c.Embed(context.Background(), "text")
	require.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientClient_DelayIsCapped(t *testing.T) {
	delays := noSleep(t)

	transient := &ServiceError{StatusCode: http.StatusBadGateway}
	inner := &scriptedClient{errs: []error{transient, transient, transient, transient}}
	c := NewResilientClient(inner, nil, RetryPolicy{MaxAttempts: 5, InitialDelay: 3 * time.Second, MaxDelay: 5 * time.Second}, nil)

	_, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second}, *delays)
}

func TestResilientClient_RateLimiterHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	require.NotNil(t, limiter)
	require.True(t, limiter.Allow())

	inner := &scriptedClient{}
	c := NewResilientClient(inner, limiter, RetryPolicy{MaxAttempts: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, "p")
	require.Error(t, err)
	assert.Equal(t, 0, inner.calls)
}

func TestNewLimiter_DisabledWhenNonPositive(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	assert.Nil(t, NewLimiter(-1, 5))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&ServiceError{Err: errors.New("dial tcp")}))
	assert.True(t, IsTransient(&ServiceError{StatusCode: 500}))
	assert.True(t, IsTransient(&ServiceError{StatusCode: 429}))
	assert.False(t, IsTransient(&ServiceError{StatusCode: 403}))
	assert.False(t, IsTransient(ErrMalformedEnvelope))
	assert.False(t, IsTransient(context.Canceled))
}
