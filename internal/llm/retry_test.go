package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond}
}

func TestIsRateLimited_GoogleAPIError(t *testing.T) {
	err := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "too many requests"}
	assert.True(t, IsRateLimited(err))

	wrapped := fmt.Errorf("failed to generate content: %w", err)
	assert.True(t, IsRateLimited(wrapped))

	other := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.False(t, IsRateLimited(other))
}

func TestIsRateLimited_MessageSniffing(t *testing.T) {
	assert.True(t, IsRateLimited(errors.New("RESOURCE_EXHAUSTED: quota exceeded")))
	assert.True(t, IsRateLimited(errors.New("rate limit reached for model")))
	assert.False(t, IsRateLimited(errors.New("invalid API key")))
	assert.False(t, IsRateLimited(nil))
}

func TestWithRetry_SucceedsAfterRateLimit(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: http.StatusTooManyRequests}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_NonRateLimitErrorPropagatesImmediately(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(5), func() (string, error) {
		calls++
		return "", errors.New("model not found")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: http.StatusTooManyRequests}
	})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withRetry(ctx, RetryConfig{MaxAttempts: 3, InitialDelay: time.Minute}, func() (string, error) {
		return "", &googleapi.Error{Code: http.StatusTooManyRequests}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithRetry_ZeroAttemptsTreatedAsOne(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), RetryConfig{}, func() (string, error) {
		calls++
		return "once", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "once", result)
	assert.Equal(t, 1, calls)
}
