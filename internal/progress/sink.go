package progress

import (
	"github.com/mmcdole/dlcscan/internal/domain"
)

// Sink serializes progress delivery onto a single goroutine so observers
// never see torn or interleaved updates. Snapshots are taken on the sink
// goroutine at delivery time, so consecutive reports never go backwards.
type Sink struct {
	snapshot func() domain.ScanProgress
	observer domain.ScanObserver
	events   chan *domain.ProgramKey
	done     chan struct{}
}

// NewSink starts the delivery goroutine. Call Close to drain and stop it.
func NewSink(observer domain.ScanObserver, snapshot func() domain.ScanProgress) *Sink {
	if observer == nil {
		observer = domain.NoOpObserver{}
	}
	s := &Sink{
		snapshot: snapshot,
		observer: observer,
		events:   make(chan *domain.ProgramKey, 64),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Sink) loop() {
	defer close(s.done)
	for key := range s.events {
		p := s.snapshot()
		p.Committed = key
		s.observer.OnProgress(p)
	}
}

// Notify schedules a progress report.
func (s *Sink) Notify() {
	s.events <- nil
}

// Committed schedules a report announcing that key's Selection was written.
func (s *Sink) Committed(key domain.ProgramKey) {
	s.events <- &key
}

// Close delivers pending reports and stops the goroutine. A final report
// is always delivered so observers see the end state.
func (s *Sink) Close() {
	s.events <- nil
	close(s.events)
	<-s.done
}
