package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_ExecuteSuccess(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-success"}, nil)

	result, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestCircuitBreaker_ExecutePropagatesError(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-error"}, nil)
	opErr := errors.New("upstream failed")

	_, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, opErr
	})

	assert.ErrorIs(t, err, opErr)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Settings{
		Name:             "test-open",
		FailureThreshold: 3,
		Timeout:          time.Minute,
	}, nil)

	fail := func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	}

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(context.Background(), fail)
		require.Error(t, err)
	}

	assert.False(t, cb.Allow())

	_, err := cb.Execute(context.Background(), fail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_FallbackOnOpen(t *testing.T) {
	fallback := func(ctx context.Context, err error) (interface{}, error) {
		return "fallback", nil
	}
	cb := NewCircuitBreaker(Settings{
		Name:             "test-fallback",
		FailureThreshold: 1,
		Timeout:          time.Minute,
	}, fallback)

	fail := func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	}

	_, err := cb.Execute(context.Background(), fail)
	require.Error(t, err)

	result, err := cb.Execute(context.Background(), fail)
	require.NoError(t, err)
	assert.Equal(t, "fallback", result)
}

func TestCircuitBreaker_NilOperation(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test-nil"}, nil)

	_, err := cb.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestCircuitBreaker_NilBreakerPassesThrough(t *testing.T) {
	var cb *CircuitBreaker

	result, err := cb.Execute(context.Background(), func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, cb.Allow())
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	attempts := 0
	result, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 3, attempts)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 1.0,
	}

	attempts := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, errors.New("always fails")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetry_DoesNotRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, DefaultRetryConfig(), func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("should not matter")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_NonRetryableError(t *testing.T) {
	sentinel := errors.New("bad input")
	cfg := RetryConfig{
		MaxAttempts:      3,
		InitialBackoff:   time.Millisecond,
		RetryableChecker: func(err error) bool { return !errors.Is(err, sentinel) },
	}

	attempts := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context) (interface{}, error) {
		attempts++
		return nil, sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	assert.True(t, IsRetryableHTTPStatus(503))
	assert.True(t, IsRetryableHTTPStatus(429))
	assert.False(t, IsRetryableHTTPStatus(400))
	assert.False(t, IsRetryableHTTPStatus(404))
	assert.False(t, IsRetryableHTTPStatus(200))
}
