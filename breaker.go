package raffle

import (
	"context"

	"github.com/sony/gobreaker"
)

// BreakerStore wraps a Store with a circuit breaker so a flapping backend
// fails fast instead of stalling every draw. When the breaker is disabled the
// wrapper passes calls straight through.
type BreakerStore struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *BreakerConfig
}

// NewBreakerStore wraps store according to config.
func NewBreakerStore(store Store, config *BreakerConfig, logger Logger) *BreakerStore {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}
	if !config.Enabled {
		return &BreakerStore{store: store, logger: logger, config: config}
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange && logger != nil {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	}

	return &BreakerStore{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		config:  config,
	}
}

// execute runs fn through the breaker, translating an open breaker into a
// structured store error.
func (b *BreakerStore) execute(op string, fn func() error) error {
	if b.breaker == nil {
		return fn()
	}
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return NewRetryableError(ErrCodeBreakerOpen, "store circuit breaker is open").
			WithOperation(op).WithCause(err)
	}
	return err
}

// State returns the current breaker state name, or "disabled".
func (b *BreakerStore) State() string {
	if b.breaker == nil {
		return "disabled"
	}
	return b.breaker.State().String()
}

func (b *BreakerStore) LoadPool(ctx context.Context) ([]Prize, error) {
	var prizes []Prize
	err := b.execute("load_pool", func() error {
		var err error
		prizes, err = b.store.LoadPool(ctx)
		return err
	})
	return prizes, err
}

func (b *BreakerStore) SavePool(ctx context.Context, prizes []Prize) error {
	return b.execute("save_pool", func() error {
		return b.store.SavePool(ctx, prizes)
	})
}

func (b *BreakerStore) LoadHistory(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := b.execute("load_history", func() error {
		var err error
		entries, err = b.store.LoadHistory(ctx)
		return err
	})
	return entries, err
}

func (b *BreakerStore) SaveHistory(ctx context.Context, entries []HistoryEntry) error {
	return b.execute("save_history", func() error {
		return b.store.SaveHistory(ctx, entries)
	})
}

func (b *BreakerStore) ClearHistory(ctx context.Context) error {
	return b.execute("clear_history", func() error {
		return b.store.ClearHistory(ctx)
	})
}

func (b *BreakerStore) LoadSetting(ctx context.Context, key, def string) (string, error) {
	value := def
	err := b.execute("load_setting", func() error {
		var err error
		value, err = b.store.LoadSetting(ctx, key, def)
		return err
	})
	return value, err
}

func (b *BreakerStore) SaveSetting(ctx context.Context, key, value string) error {
	return b.execute("save_setting", func() error {
		return b.store.SaveSetting(ctx, key, value)
	})
}

func (b *BreakerStore) Close() error {
	return b.store.Close()
}
