package raffle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sync"
)

// RaffleService owns the prize pool and history ledger for one session and
// sequences every mutation through a single store. It replaces the global
// mutable pool of earlier designs with one explicit owner: callers never touch
// the pool directly, and each mutation is persisted before the next one is
// accepted. The mutex keeps exactly one mutation in flight at a time.
type RaffleService struct {
	mu      sync.Mutex
	pool    *PrizePool
	ledger  *HistoryLedger
	engine  *DrawEngine
	store   Store
	logger  Logger
	monitor *PerformanceMonitor
}

// NewRaffleService creates a service on top of the given store.
func NewRaffleService(store Store) *RaffleService {
	return NewRaffleServiceWithLogger(store, &DefaultLogger{})
}

// NewRaffleServiceWithLogger creates a service with a custom logger.
func NewRaffleServiceWithLogger(store Store, logger Logger) *RaffleService {
	if logger == nil {
		logger = &DefaultLogger{}
	}
	monitor := NewPerformanceMonitor()
	engine := NewDrawEngineWithLogger(logger)
	engine.SetMonitor(monitor)

	return &RaffleService{
		pool:    NewPrizePool(),
		ledger:  NewHistoryLedger(),
		engine:  engine,
		store:   store,
		logger:  logger,
		monitor: monitor,
	}
}

// SetHistoryCap replaces the ledger cap, keeping existing entries up to the
// new limit.
func (s *RaffleService) SetHistoryCap(cap int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.ledger.Entries()
	s.ledger = NewHistoryLedgerWithCap(cap)
	s.ledger.Replace(entries)
}

// SetRandomSource replaces the engine's random source.
func (s *RaffleService) SetRandomSource(src RandomSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetRandomSource(src)
}

// Load populates the pool and ledger from the store. Loading runs an initial
// redistribution pass so a pool persisted with depleted prizes is immediately
// consistent.
func (s *RaffleService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prizes, err := s.store.LoadPool(ctx)
	if err != nil {
		return err
	}
	s.pool.Replace(prizes)
	Redistribute(s.pool)

	entries, err := s.store.LoadHistory(ctx)
	if err != nil {
		return err
	}
	s.ledger.Replace(entries)

	s.logger.Info("Loaded %d prizes and %d history entries", s.pool.Len(), s.ledger.Len())
	return nil
}

// Pool returns a snapshot of the prize pool in insertion order.
func (s *RaffleService) Pool() []Prize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.All()
}

// PerformDraw draws a single prize for the actor and persists the outcome.
func (s *RaffleService) PerformDraw(ctx context.Context, actor string) (*DrawResult, error) {
	results, err := s.PerformDraws(ctx, actor, 1)
	if len(results) > 0 {
		return results[0], err
	}
	return nil, err
}

// PerformDraws draws count prizes for the actor, appends the batch to the
// history ledger and persists both the ledger and the mutated pool.
//
// Failure handling follows the recoverable-everything posture of the UI:
//   - A draw failure mid-batch returns the successful prefix with the error.
//   - A quota rejection while persisting history resets the ledger and
//     surfaces ErrHistoryDropped; the draw results are kept.
//   - A pool save failure is always surfaced, because the in-memory pool has
//     already diverged from the stored one.
func (s *RaffleService) PerformDraws(ctx context.Context, actor string, count int) ([]*DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, drawErr := s.engine.DrawMany(s.pool, actor, count)
	if len(results) == 0 {
		return nil, drawErr
	}

	var histErr error
	s.ledger.Append(results)
	if err := s.store.SaveHistory(ctx, s.ledger.Entries()); err != nil {
		s.monitor.RecordStoreError()
		if IsStoreQuota(err) {
			s.logger.Error("History write rejected for quota, resetting ledger: %v", err)
			s.ledger.Clear()
			if clearErr := s.store.ClearHistory(ctx); clearErr != nil {
				s.logger.Error("Failed to clear persisted history: %v", clearErr)
			}
			s.monitor.RecordHistoryReset()
			histErr = fmt.Errorf("%w: %v", ErrHistoryDropped, err)
		} else {
			histErr = err
		}
	}

	var poolErr error
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		poolErr = fmt.Errorf("pool state may not have persisted: %w", err)
	}

	return results, errors.Join(drawErr, poolErr, histErr)
}

// AddPrize validates and adds a prize, then persists the pool. The returned
// prize carries its assigned ID.
func (s *RaffleService) AddPrize(ctx context.Context, p Prize) (Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := p.Validate(); err != nil {
		return Prize{}, err
	}
	stored := s.pool.Add(p)
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return stored, err
	}
	return stored, nil
}

// RemovePrizes deletes the prizes with the given IDs and persists the pool.
func (s *RaffleService) RemovePrizes(ctx context.Context, ids ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	removed := s.pool.RemoveWhere(func(p Prize) bool {
		_, ok := idSet[p.ID]
		return ok
	})
	if removed == 0 {
		return 0, nil
	}
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return removed, err
	}
	return removed, nil
}

// UpdatePrize applies a partial update and persists the pool.
func (s *RaffleService) UpdatePrize(ctx context.Context, id string, upd PrizeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pool.UpdateFields(id, upd); err != nil {
		return err
	}
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return err
	}
	return nil
}

// SaveConfiguration enforces the 100% invariant, runs a redistribution pass
// and persists the pool. This is the configuration-save gate: a pool whose
// active probabilities do not sum to 100 is rejected with
// ErrProbabilityMismatch and must be normalized or hand-edited first.
func (s *RaffleService) SaveConfiguration(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidatePrizePool(s.pool.All()); err != nil {
		return err
	}
	Redistribute(s.pool)
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return err
	}
	return nil
}

// Normalize rescales the pool to exactly 100% and persists it. Explicitly
// user-triggered.
func (s *RaffleService) Normalize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	NormalizeTo100(s.pool)
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return err
	}
	return nil
}

// ImportPrizes replaces the pool with rows from an imported dataset, runs a
// redistribution pass and persists. The imported pool is immediately drawable.
func (s *RaffleService) ImportPrizes(ctx context.Context, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prizes, err := ImportPrizeRows(rows)
	if err != nil {
		return err
	}
	s.pool.Replace(prizes)
	Redistribute(s.pool)
	if err := s.store.SavePool(ctx, s.pool.All()); err != nil {
		s.monitor.RecordStoreError()
		return err
	}
	return nil
}

// History returns a restartable sequence over the ledger, filtered the way
// HistoryLedger.Query filters.
func (s *RaffleService) History(filter string) iter.Seq[HistoryEntry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Query(filter)
}

// ClearHistory empties the ledger in memory and in the store.
func (s *RaffleService) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Clear()
	if err := s.store.ClearHistory(ctx); err != nil {
		s.monitor.RecordStoreError()
		return err
	}
	return nil
}

// StorageFootprint estimates the persisted size of the ledger and the pool in
// bytes, two bytes per UTF-16 code unit. Advisory only.
func (s *RaffleService) StorageFootprint() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.ledger.SizeBytes()
	if data, err := json.Marshal(s.pool.All()); err == nil {
		total += (utf16Units(PoolKey) + utf16Units(string(data))) * 2
	}
	return total
}

// LoadSetting reads a loose setting through the store.
func (s *RaffleService) LoadSetting(ctx context.Context, key, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LoadSetting(ctx, key, def)
}

// SaveSetting writes a loose setting through the store.
func (s *RaffleService) SaveSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SaveSetting(ctx, key, value)
}

// Metrics returns a snapshot of the service's performance counters.
func (s *RaffleService) Metrics() DrawMetrics {
	return s.monitor.Snapshot()
}

// Close releases the underlying store.
func (s *RaffleService) Close() error {
	return s.store.Close()
}
