package raffle

import "context"

// Store abstracts the persistence backend for the prize pool, the history
// ledger and loose settings.
//
// LoadPool and LoadHistory return an empty slice when nothing has been
// persisted yet or the stored value cannot be decoded; "not found" is never an
// error. SavePool must be all-or-nothing: a failed save never leaves a
// partially written pool visible to the next LoadPool, and saved pools come
// back in the same order they were written.
type Store interface {
	LoadPool(ctx context.Context) ([]Prize, error)
	SavePool(ctx context.Context, prizes []Prize) error

	LoadHistory(ctx context.Context) ([]HistoryEntry, error)
	SaveHistory(ctx context.Context, entries []HistoryEntry) error
	ClearHistory(ctx context.Context) error

	LoadSetting(ctx context.Context, key, def string) (string, error)
	SaveSetting(ctx context.Context, key, value string) error

	Close() error
}
