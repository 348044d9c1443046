package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Stats is a snapshot of the profiler's accumulated load statistics.
type Stats struct {
	// Loads is the number of completed loads.
	Loads int
	// Total is the summed wall time of all loads.
	Total time.Duration
	// Slowest is the longest single load.
	Slowest time.Duration
	// SlowestName is the name of the longest load.
	SlowestName string
	// TotalAllocMB is the heap allocated across all loads, in MB. Concurrent loads share the counter.
	TotalAllocMB float64
}

// Profiler tracks per-load wall time and allocation statistics.
// Each finished load is logged at debug level.
type Profiler struct {
	mu     sync.Mutex
	logger *slog.Logger
	stats  Stats
}

// NewProfiler creates a new Profiler that logs through logger.
//
// Parameters:
//   - logger: the logger to report loads on, slog.Default() when nil
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{logger: logger}
}

// Begin starts timing a load and returns the function that ends it.
//
// Parameters:
//   - name: the load's name (usually the file path)
//
// Returns:
//   - func(): call when the load finishes
func (p *Profiler) Begin(name string) func() {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	return func() {
		elapsed := time.Since(start)

		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		// TotalAlloc: cumulative bytes allocated for heap objects, so the delta tracks this load's churn.
		allocMB := float64(after.TotalAlloc-before.TotalAlloc) / 1024 / 1024
		heapMB := float64(after.HeapAlloc) / 1024 / 1024

		p.mu.Lock()
		p.stats.Loads++
		p.stats.Total += elapsed
		p.stats.TotalAllocMB += allocMB
		if elapsed > p.stats.Slowest {
			p.stats.Slowest = elapsed
			p.stats.SlowestName = name
		}
		p.mu.Unlock()

		p.logger.Debug("[Profiler] load finished",
			"name", name,
			"duration", elapsed,
			"allocMB", allocMB,
			"heapMB", heapMB,
			"gc", after.NumGC-before.NumGC,
		)
	}
}

// Stats returns a snapshot of the accumulated statistics.
func (p *Profiler) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
