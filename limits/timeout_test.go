package limits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout_Success(t *testing.T) {
	err := WithTimeout(context.Background(), "fast-op", time.Second, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
}

func TestWithTimeout_PropagatesOpError(t *testing.T) {
	opErr := errors.New("backend said no")
	err := WithTimeout(context.Background(), "failing-op", time.Second, func(ctx context.Context) error {
		return opErr
	})
	assert.Equal(t, opErr, err, "non-timeout failures must pass through untranslated")
}

func TestWithTimeout_DeadlineClassified(t *testing.T) {
	err := WithTimeout(context.Background(), "slow-op", 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "slow-op", timeoutErr.Op)
	assert.Equal(t, 20*time.Millisecond, timeoutErr.Limit)
	assert.True(t, Retryable(err), "timeouts are retryable a bounded number of times")
}

func TestWithTimeout_ParentCancellationPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTimeout(ctx, "cancelled-op", time.Second, func(ctx context.Context) error {
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "parent cancellation is not a timeout")
}

func TestRetryable_UnknownErrorsAreFatal(t *testing.T) {
	assert.False(t, Retryable(errors.New("unclassified failure")))
	assert.False(t, Retryable(nil))
}
