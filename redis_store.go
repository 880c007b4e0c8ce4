package raffle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists the pool and ledger as whole JSON blobs under raffle:
// keys. Writes go through retry with exponential backoff for transient
// failures; out-of-memory rejections are classified as quota errors so the
// caller can apply the history-reset policy.
type RedisStore struct {
	client         *redis.Client
	logger         Logger
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewRedisStore creates a Redis-backed store with default retry settings.
func NewRedisStore(client *redis.Client) *RedisStore {
	return NewRedisStoreWithRetry(client, &DefaultLogger{}, DefaultRetryAttempts, DefaultRetryInterval)
}

// NewRedisStoreWithRetry creates a Redis-backed store with custom retry
// settings.
func NewRedisStoreWithRetry(client *redis.Client, logger Logger, retryAttempts int, retryDelay time.Duration) *RedisStore {
	return &RedisStore{
		client:         client,
		logger:         logger,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryDelay,
	}
}

// executeWithRetry runs a Redis operation, retrying transient failures with
// exponential backoff.
func (s *RedisStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := s.retryBaseDelay * time.Duration(1<<(attempt-1))
			if max := 5 * time.Second; delay > max {
				delay = max
			}
			s.logger.Debug("Retrying %s (attempt %d/%d) after %v", operation, attempt, s.retryAttempts, delay)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry for %s: %w", operation, ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				s.logger.Info("%s succeeded after %d retries", operation, attempt)
			}
			return nil
		}
		lastErr = err

		if !isRetriableStoreError(err) {
			break
		}
	}
	return lastErr
}

// saveBlob serializes v and writes it under key.
func (s *RedisStore) saveBlob(ctx context.Context, op, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return NewError(ErrCodeStoreCorrupted, "serialization failed").WithOperation(op).WithCause(err)
	}
	if len(data) > MaxSerializedSize {
		return NewError(ErrCodeStoreQuota, fmt.Sprintf(
			"serialized size %d exceeds limit %d", len(data), MaxSerializedSize)).WithOperation(op)
	}

	err = s.executeWithRetry(ctx, op, func() error {
		return s.client.Set(ctx, key, data, 0).Err()
	})
	if err != nil {
		s.logger.Error("Failed to save %s (%d bytes): %v", key, len(data), err)
		return newStoreWriteError(op, err)
	}
	s.logger.Debug("Saved %s (%d bytes)", key, len(data))
	return nil
}

// loadBlob reads key and decodes it into out. A missing key or an undecodable
// value leaves out untouched and returns found=false.
func (s *RedisStore) loadBlob(ctx context.Context, op, key string, out any) (bool, error) {
	var data []byte
	err := s.executeWithRetry(ctx, op, func() error {
		b, err := s.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			data = nil
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return false, newStoreReadError(op, err)
	}
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		// A malformed blob is treated like an absent one so the session can
		// start fresh; the raw value stays in place for inspection.
		s.logger.Error("Discarding malformed value at %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

// LoadPool returns the persisted prize pool, or an empty slice when absent or
// malformed.
func (s *RedisStore) LoadPool(ctx context.Context) ([]Prize, error) {
	var prizes []Prize
	found, err := s.loadBlob(ctx, "load_pool", PoolKey, &prizes)
	if err != nil {
		return nil, err
	}
	if !found || prizes == nil {
		return []Prize{}, nil
	}
	return prizes, nil
}

// SavePool writes the whole pool as a single blob, which makes the save
// atomic from the reader's perspective.
func (s *RedisStore) SavePool(ctx context.Context, prizes []Prize) error {
	return s.saveBlob(ctx, "save_pool", PoolKey, prizes)
}

// LoadHistory returns the persisted ledger, or an empty slice when absent or
// malformed.
func (s *RedisStore) LoadHistory(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	found, err := s.loadBlob(ctx, "load_history", HistoryKey, &entries)
	if err != nil {
		return nil, err
	}
	if !found || entries == nil {
		return []HistoryEntry{}, nil
	}
	return entries, nil
}

// SaveHistory writes the whole ledger as a single blob.
func (s *RedisStore) SaveHistory(ctx context.Context, entries []HistoryEntry) error {
	return s.saveBlob(ctx, "save_history", HistoryKey, entries)
}

// ClearHistory removes the persisted ledger.
func (s *RedisStore) ClearHistory(ctx context.Context) error {
	err := s.executeWithRetry(ctx, "clear_history", func() error {
		return s.client.Del(ctx, HistoryKey).Err()
	})
	if err != nil {
		return newStoreWriteError("clear_history", err)
	}
	return nil
}

// LoadSetting returns the stored value for key, or def when absent.
func (s *RedisStore) LoadSetting(ctx context.Context, key, def string) (string, error) {
	var value string
	err := s.executeWithRetry(ctx, "load_setting", func() error {
		v, err := s.client.Get(ctx, SettingKeyPrefix+key).Result()
		if err == redis.Nil {
			value = def
			return nil
		}
		value = v
		return err
	})
	if err != nil {
		return def, newStoreReadError("load_setting", err)
	}
	return value, nil
}

// SaveSetting stores a loose setting value.
func (s *RedisStore) SaveSetting(ctx context.Context, key, value string) error {
	err := s.executeWithRetry(ctx, "save_setting", func() error {
		return s.client.Set(ctx, SettingKeyPrefix+key, value, 0).Err()
	})
	if err != nil {
		return newStoreWriteError("save_setting", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
