package raffle

import (
	"fmt"
	"strings"
	"time"
)

// DrawEngine performs weighted random selections against a prize pool.
//
// Selection is a cumulative-distribution inversion over the pool in insertion
// order: a random value r in [0, totalWeight) selects the first active prize
// whose running cumulative weight reaches r. The fixed iteration order makes
// tie-breaks at floating-point boundaries deterministic.
type DrawEngine struct {
	random  RandomSource
	logger  Logger
	monitor *PerformanceMonitor
	now     func() time.Time
}

// NewDrawEngine creates a draw engine with a secure random source.
func NewDrawEngine() *DrawEngine {
	return &DrawEngine{
		random:  NewSecureRandomSource(),
		logger:  &DefaultLogger{},
		monitor: NewPerformanceMonitor(),
		now:     time.Now,
	}
}

// NewDrawEngineWithLogger creates a draw engine with a custom logger.
func NewDrawEngineWithLogger(logger Logger) *DrawEngine {
	e := NewDrawEngine()
	e.logger = logger
	return e
}

// SetRandomSource replaces the engine's random source. A deterministic source
// makes draw outcomes reproducible.
func (e *DrawEngine) SetRandomSource(src RandomSource) {
	if src != nil {
		e.random = src
	}
}

// SetMonitor shares an external performance monitor with the engine.
func (e *DrawEngine) SetMonitor(monitor *PerformanceMonitor) {
	if monitor != nil {
		e.monitor = monitor
	}
}

// Metrics returns a snapshot of the engine's draw metrics.
func (e *DrawEngine) Metrics() DrawMetrics { return e.monitor.Snapshot() }

// DrawOnce samples one prize from the pool for the given actor.
//
// The selected prize's quantity is decremented in place and the pool is
// immediately redistributed, so the next draw in a batch sees updated odds.
// The caller is responsible for persisting the mutated pool.
//
// Returns ErrMissingActor when actor trims to empty, and ErrPoolExhausted
// when no prize has stock or the total active weight is zero.
func (e *DrawEngine) DrawOnce(pool *PrizePool, actor string) (*DrawResult, error) {
	start := time.Now()

	actor = strings.TrimSpace(actor)
	if actor == "" {
		e.monitor.RecordDraw(time.Since(start), false)
		return nil, ErrMissingActor
	}

	if pool == nil || pool.Len() == 0 {
		e.monitor.RecordDraw(time.Since(start), false)
		return nil, ErrPoolExhausted
	}
	totalWeight := pool.TotalActiveProbability()
	if totalWeight <= 0 {
		e.monitor.RecordDraw(time.Since(start), false)
		return nil, ErrPoolExhausted
	}

	u, err := e.random.Float64()
	if err != nil {
		e.monitor.RecordDraw(time.Since(start), false)
		return nil, fmt.Errorf("random source failed: %w", err)
	}
	r := u * totalWeight

	selected := -1
	lastActive := -1
	var cumulative float64
	for i := range pool.prizes {
		if pool.prizes[i].Quantity <= 0 {
			continue
		}
		lastActive = i
		cumulative += pool.prizes[i].Probability
		if r <= cumulative {
			selected = i
			break
		}
	}
	if selected < 0 {
		// Floating-point accumulation can leave r a hair above the final
		// cumulative sum; fall back to the last active prize.
		selected = lastActive
	}

	p := &pool.prizes[selected]
	probabilityAtDraw := p.Probability
	p.Quantity--

	result := &DrawResult{
		Prize:             *p,
		Actor:             actor,
		ProbabilityAtDraw: probabilityAtDraw,
		DrawnAt:           e.now(),
	}

	Redistribute(pool)

	e.monitor.RecordDraw(time.Since(start), true)
	e.logger.Debug("Drew prize %q for %q (p=%.2f%%, remaining=%d)",
		p.Name, actor, probabilityAtDraw, p.Quantity)
	return result, nil
}

// DrawMany performs n sequential draws for the same actor.
//
// Failure policy is best-effort partial: on the first failing draw the
// results gathered so far are returned together with the error. A pool that
// runs out of stock mid-batch therefore yields the successful prefix plus
// ErrPoolExhausted.
func (e *DrawEngine) DrawMany(pool *PrizePool, actor string, n int) ([]*DrawResult, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}

	results := make([]*DrawResult, 0, n)
	for range n {
		res, err := e.DrawOnce(pool, actor)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// DrawManyWithRecovery performs n sequential draws and reports the outcome as
// a MultiDrawResult instead of aborting the caller on partial failure. Draws
// stop at the first error since a failure (exhausted pool, missing actor)
// would repeat for every remaining draw.
func (e *DrawEngine) DrawManyWithRecovery(pool *PrizePool, actor string, n int) (*MultiDrawResult, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}

	out := &MultiDrawResult{TotalRequested: n}
	for range n {
		res, err := e.DrawOnce(pool, actor)
		if err != nil {
			out.Failed = n - out.Completed
			out.LastError = err
			out.PartialSuccess = out.Completed > 0
			e.logger.Info("Multi-draw stopped after %d/%d draws: %v", out.Completed, n, err)
			break
		}
		out.Results = append(out.Results, res)
		out.Completed++
	}
	return out, nil
}
