package progress

import (
	"slices"
	"sync"
)

// Remaining tracks the labels of work still in flight, in start order.
type Remaining struct {
	mu     sync.Mutex
	order  []string
	labels map[string]string
}

// NewRemaining creates an empty tracker
func NewRemaining() *Remaining {
	return &Remaining{labels: make(map[string]string)}
}

// Add records id as in flight; adding an id twice is a no-op
func (r *Remaining) Add(id, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.labels[id]; ok {
		return
	}
	r.labels[id] = label
	r.order = append(r.order, id)
}

// Remove records id as finished
func (r *Remaining) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.labels[id]; !ok {
		return
	}
	delete(r.labels, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
}

// Labels returns the in-flight labels in start order
func (r *Remaining) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.labels[id])
	}
	return out
}

// Len returns how many ids are in flight
func (r *Remaining) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
