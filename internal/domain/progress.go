package domain

// ProgressSnapshot is a point-in-time read of a progress aggregator
type ProgressSnapshot struct {
	Total     int64
	Completed int64
}

// Percent returns completed/total as 0-100, or 0 when nothing is pending
func (s ProgressSnapshot) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	p := int(float64(s.Completed) / float64(s.Total) * 100)
	return max(0, min(p, 100))
}

// Done reports whether every registered unit has completed
func (s ProgressSnapshot) Done() bool {
	return s.Completed >= s.Total
}

// ScanProgress reports progress during a discovery run.
type ScanProgress struct {
	Programs ProgressSnapshot
	AddOns   ProgressSnapshot

	// Remaining names of programs still being scanned
	RemainingPrograms []string
	// Remaining ids of add-ons still being resolved
	RemainingAddOns []string

	// Committed is set when a Selection was just written
	Committed *ProgramKey
}

// ScanObserver receives progress updates during discovery runs.
type ScanObserver interface {
	OnProgress(progress ScanProgress)
}

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(ScanProgress) {}

// Overall combines program and add-on counters into one snapshot
func (p ScanProgress) Overall() ProgressSnapshot {
	return ProgressSnapshot{
		Total:     p.Programs.Total + p.AddOns.Total,
		Completed: p.Programs.Completed + p.AddOns.Completed,
	}
}
