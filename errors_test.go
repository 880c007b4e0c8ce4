package raffle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleError(t *testing.T) {
	t.Run("formats code, operation and message", func(t *testing.T) {
		err := NewError(ErrCodeStoreWrite, "store write failed").WithOperation("save_pool")
		assert.Equal(t, "[RAFFLE_2001] save_pool: store write failed", err.Error())

		bare := NewError(ErrCodeSystem, "boom")
		assert.Equal(t, "[RAFFLE_1000] boom", bare.Error())
	})

	t.Run("matches by code through errors.Is", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w",
			NewError(ErrCodeStoreQuota, "store is out of space").WithOperation("save_history"))

		assert.ErrorIs(t, err, NewError(ErrCodeStoreQuota, "anything"))
		assert.NotErrorIs(t, err, NewError(ErrCodeStoreWrite, "anything"))
	})

	t.Run("unwraps to the cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := NewError(ErrCodeStoreRead, "store read failed").WithCause(cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("retryable flag", func(t *testing.T) {
		assert.True(t, NewRetryableError(ErrCodeStoreWrite, "x").Retryable)
		assert.False(t, NewError(ErrCodeStoreQuota, "x").Retryable)
	})
}

func TestStoreErrorClassification(t *testing.T) {
	t.Run("quota causes become quota errors", func(t *testing.T) {
		causes := []string{
			"OOM command not allowed when used memory > 'maxmemory'",
			"database or disk is full",
			"write failed: no space left on device",
			"QuotaExceededError: exceeded the quota",
		}
		for _, msg := range causes {
			err := newStoreWriteError("save_history", errors.New(msg))
			assert.Equal(t, ErrCodeStoreQuota, err.Code, msg)
			assert.True(t, IsStoreQuota(err), msg)
			assert.False(t, err.Retryable, msg)
		}
	})

	t.Run("other write causes stay retryable write errors", func(t *testing.T) {
		err := newStoreWriteError("save_pool", errors.New("connection reset by peer"))
		assert.Equal(t, ErrCodeStoreWrite, err.Code)
		assert.True(t, err.Retryable)
		assert.False(t, IsStoreQuota(err))
	})

	t.Run("read errors are retryable", func(t *testing.T) {
		err := newStoreReadError("load_pool", errors.New("i/o timeout"))
		require.Equal(t, ErrCodeStoreRead, err.Code)
		assert.True(t, IsRetryable(err))
	})
}

func TestIsRetryable(t *testing.T) {
	retriable := []string{
		"dial tcp 127.0.0.1:6379: connection refused",
		"read tcp: i/o timeout",
		"redis: connection pool timeout",
		"context deadline exceeded",
		"database is locked",
	}
	for _, msg := range retriable {
		assert.True(t, IsRetryable(errors.New(msg)), msg)
	}

	assert.False(t, IsRetryable(errors.New("syntax error near SELECT")))
	assert.False(t, IsRetryable(nil))
}

func TestIsStoreQuotaPlainErrors(t *testing.T) {
	assert.True(t, IsStoreQuota(errors.New("OOM command not allowed")))
	assert.False(t, IsStoreQuota(errors.New("connection refused")))
	assert.False(t, IsStoreQuota(nil))
}
