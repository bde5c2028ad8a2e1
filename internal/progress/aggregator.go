// Package progress turns many concurrent start/finish signals into a
// single percentage for one discovery run.
package progress

import (
	"sync/atomic"

	"github.com/mmcdole/dlcscan/internal/domain"
)

// Aggregator counts pending and completed units.
//
// Report takes signed deltas: a negative delta announces |delta| more
// pending units (the total grows as work is discovered), a non-negative
// delta announces one completed unit. Deltas may arrive concurrently and
// in any order.
type Aggregator struct {
	total     atomic.Int64
	completed atomic.Int64
	onChange  func()
}

// NewAggregator creates an aggregator. onChange, if set, is invoked after
// every delta; it must not block.
func NewAggregator(onChange func()) *Aggregator {
	return &Aggregator{onChange: onChange}
}

// Report applies one signed delta.
func (a *Aggregator) Report(delta int) {
	if delta < 0 {
		a.total.Add(int64(-delta))
	} else {
		a.completed.Add(1)
	}
	if a.onChange != nil {
		a.onChange()
	}
}

// Add announces n more pending units.
func (a *Aggregator) Add(n int) {
	if n > 0 {
		a.Report(-n)
	}
}

// Complete announces one finished unit.
func (a *Aggregator) Complete() {
	a.Report(0)
}

// Snapshot reads both counters. Completed is read first so a concurrent
// Add/Complete pair can never show completed > total.
func (a *Aggregator) Snapshot() domain.ProgressSnapshot {
	completed := a.completed.Load()
	total := a.total.Load()
	return domain.ProgressSnapshot{Total: total, Completed: completed}
}

// Percent is Snapshot().Percent()
func (a *Aggregator) Percent() int {
	return a.Snapshot().Percent()
}
