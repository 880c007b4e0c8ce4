package raffle

import (
	"sync/atomic"
	"time"
)

// DrawMetrics is a point-in-time snapshot of the performance counters.
type DrawMetrics struct {
	TotalDraws      int64 `json:"total_draws"`
	SuccessfulDraws int64 `json:"successful_draws"`
	FailedDraws     int64 `json:"failed_draws"`
	StoreErrors     int64 `json:"store_errors"`
	HistoryResets   int64 `json:"history_resets"`
	TotalDrawTime   int64 `json:"total_draw_time"` // nanoseconds
	StartTime       int64 `json:"start_time"`      // unix nanoseconds
}

// SuccessRate returns the draw success rate as a percentage.
func (m DrawMetrics) SuccessRate() float64 {
	if m.TotalDraws == 0 {
		return 0.0
	}
	return float64(m.SuccessfulDraws) / float64(m.TotalDraws) * 100.0
}

// AverageDrawTime returns the mean duration of a draw.
func (m DrawMetrics) AverageDrawTime() time.Duration {
	if m.TotalDraws == 0 {
		return 0
	}
	return time.Duration(m.TotalDrawTime / m.TotalDraws)
}

// PerformanceMonitor collects draw and persistence counters with atomic
// operations. Counters are purely advisory.
type PerformanceMonitor struct {
	totalDraws      atomic.Int64
	successfulDraws atomic.Int64
	failedDraws     atomic.Int64
	storeErrors     atomic.Int64
	historyResets   atomic.Int64
	totalDrawTime   atomic.Int64
	startTime       atomic.Int64

	enabled atomic.Bool
}

// NewPerformanceMonitor creates an enabled performance monitor
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{}
	pm.enabled.Store(true)
	pm.startTime.Store(time.Now().UnixNano())
	return pm
}

// Enable turns metric collection on
func (pm *PerformanceMonitor) Enable() { pm.enabled.Store(true) }

// Disable turns metric collection off
func (pm *PerformanceMonitor) Disable() { pm.enabled.Store(false) }

// RecordDraw records one draw attempt and its duration
func (pm *PerformanceMonitor) RecordDraw(elapsed time.Duration, success bool) {
	if !pm.enabled.Load() {
		return
	}
	pm.totalDraws.Add(1)
	pm.totalDrawTime.Add(int64(elapsed))
	if success {
		pm.successfulDraws.Add(1)
	} else {
		pm.failedDraws.Add(1)
	}
}

// RecordStoreError records one persistence failure
func (pm *PerformanceMonitor) RecordStoreError() {
	if pm.enabled.Load() {
		pm.storeErrors.Add(1)
	}
}

// RecordHistoryReset records one quota-triggered ledger reset
func (pm *PerformanceMonitor) RecordHistoryReset() {
	if pm.enabled.Load() {
		pm.historyResets.Add(1)
	}
}

// Snapshot returns the current counter values
func (pm *PerformanceMonitor) Snapshot() DrawMetrics {
	return DrawMetrics{
		TotalDraws:      pm.totalDraws.Load(),
		SuccessfulDraws: pm.successfulDraws.Load(),
		FailedDraws:     pm.failedDraws.Load(),
		StoreErrors:     pm.storeErrors.Load(),
		HistoryResets:   pm.historyResets.Load(),
		TotalDrawTime:   pm.totalDrawTime.Load(),
		StartTime:       pm.startTime.Load(),
	}
}

// Reset zeroes every counter and restarts the clock
func (pm *PerformanceMonitor) Reset() {
	pm.totalDraws.Store(0)
	pm.successfulDraws.Store(0)
	pm.failedDraws.Store(0)
	pm.storeErrors.Store(0)
	pm.historyResets.Store(0)
	pm.totalDrawTime.Store(0)
	pm.startTime.Store(time.Now().UnixNano())
}
