package progress

import (
	"sync"
	"testing"

	"github.com/mmcdole/dlcscan/internal/domain"
)

func TestAggregatorPercent(t *testing.T) {
	tests := []struct {
		name   string
		deltas []int
		want   int
	}{
		{"nothing pending", nil, 0},
		{"pending only", []int{-4}, 0},
		{"half done", []int{-4, 0, 3}, 50},
		{"all done", []int{-2, 0, 0}, 100},
		{"total grows", []int{-1, 0, -3}, 25},
		{"completion before announce", []int{0, -1}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator(nil)
			for _, d := range tt.deltas {
				a.Report(d)
			}
			if got := a.Percent(); got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPercentClamps(t *testing.T) {
	s := domain.ProgressSnapshot{Total: 2, Completed: 5}
	if got := s.Percent(); got != 100 {
		t.Errorf("Percent() = %d, want 100", got)
	}
}

func TestAggregatorConcurrent(t *testing.T) {
	a := NewAggregator(nil)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Add(3)
			a.Complete()
			a.Complete()
			a.Complete()
		}()
	}
	wg.Wait()

	s := a.Snapshot()
	if s.Total != 300 || s.Completed != 300 {
		t.Fatalf("Snapshot() = %+v, want 300/300", s)
	}
	if !s.Done() {
		t.Error("Done() = false, want true")
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	reports []domain.ScanProgress
}

func (o *recordingObserver) OnProgress(p domain.ScanProgress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, p)
}

func TestSinkDeliversInOrderAndFinalState(t *testing.T) {
	obs := &recordingObserver{}
	var sink *Sink
	a := NewAggregator(func() { sink.Notify() })
	sink = NewSink(obs, func() domain.ScanProgress {
		return domain.ScanProgress{Programs: a.Snapshot()}
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Add(1)
			a.Complete()
		}()
	}
	wg.Wait()
	sink.Committed(domain.ProgramKey{Platform: domain.PlatformSteam, ID: "10"})
	sink.Close()

	if len(obs.reports) == 0 {
		t.Fatal("no reports delivered")
	}
	var last int64
	committed := 0
	for _, r := range obs.reports {
		if r.Programs.Completed < last {
			t.Fatalf("completed went backwards: %d after %d", r.Programs.Completed, last)
		}
		last = r.Programs.Completed
		if r.Committed != nil {
			committed++
		}
	}
	if committed != 1 {
		t.Errorf("committed reports = %d, want 1", committed)
	}
	final := obs.reports[len(obs.reports)-1]
	if final.Programs.Percent() != 100 {
		t.Errorf("final percent = %d, want 100", final.Programs.Percent())
	}
}

func TestRemaining(t *testing.T) {
	r := NewRemaining()
	r.Add("1", "Alpha")
	r.Add("2", "Beta")
	r.Add("1", "Alpha again")
	r.Add("3", "Gamma")
	r.Remove("2")
	r.Remove("missing")

	got := r.Labels()
	want := []string{"Alpha", "Gamma"}
	if len(got) != len(want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}
