package feed

import (
	"sync"
	"time"
)

// RecencySet tracks just-arrived entity IDs for transient display emphasis.
// Entries expire on their own after the configured interval whether or not
// any further event arrives. The set is transient state owned by the
// subscriber and is never part of the canonical collections.
type RecencySet struct {
	mu  sync.Mutex
	ttl time.Duration
	ids map[string]*time.Timer
}

// NewRecencySet creates a set whose entries live for ttl.
func NewRecencySet(ttl time.Duration) *RecencySet {
	if ttl <= 0 {
		ttl = 6 * time.Second
	}
	return &RecencySet{ttl: ttl, ids: make(map[string]*time.Timer)}
}

// Mark flags id as just arrived, restarting its expiry.
func (r *RecencySet) Mark(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.ids[id]; ok {
		t.Stop()
	}
	r.ids[id] = time.AfterFunc(r.ttl, func() {
		r.mu.Lock()
		delete(r.ids, id)
		r.mu.Unlock()
	})
}

// Contains reports whether id is still within its highlight window.
func (r *RecencySet) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[id]
	return ok
}

// Snapshot returns the currently highlighted IDs.
func (r *RecencySet) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	return out
}

// Stop cancels all pending expiries.
func (r *RecencySet) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.ids {
		t.Stop()
		delete(r.ids, id)
	}
}
