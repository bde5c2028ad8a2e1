package discovery

import (
	"context"
	"sync"
)

// gate gives one platform's per-program primary queries priority over its
// per-add-on lookups. Each program holds the gate until its primary query
// returns; add-on lookups wait until nothing holds it.
type gate struct {
	mu          sync.Mutex
	outstanding int
	idle        chan struct{} // closed while outstanding == 0
}

func newGate() *gate {
	idle := make(chan struct{})
	close(idle)
	return &gate{idle: idle}
}

// hold registers one outstanding primary query. The returned release is
// safe to call more than once; only the first call counts.
func (g *gate) hold() (release func()) {
	g.mu.Lock()
	if g.outstanding == 0 {
		g.idle = make(chan struct{})
	}
	g.outstanding++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.outstanding--
			if g.outstanding == 0 {
				close(g.idle)
			}
			g.mu.Unlock()
		})
	}
}

// wait blocks until no primary query is outstanding or ctx is done
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	idle := g.idle
	g.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
