package timers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps at most one active timer per session id. Arm replaces
// any existing timer for the key; Cancel is O(1) and idempotent.
// Callbacks run on their own goroutine and are expected to re-check
// session state themselves, since the session may have advanced or been
// deleted before the timer fired.
type Registry struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

// NewRegistry creates an empty timer registry.
func NewRegistry() *Registry {
	return &Registry{timers: make(map[uuid.UUID]*time.Timer)}
}

// Arm schedules fn to run after delay, replacing any timer already
// armed for the key.
func (r *Registry) Arm(key uuid.UUID, delay time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		if r.timers[key] == timer {
			delete(r.timers, key)
		}
		r.mu.Unlock()
		fn()
	})
	r.timers[key] = timer
}

// Cancel stops and forgets the timer for the key, if any.
func (r *Registry) Cancel(key uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[key]; ok {
		t.Stop()
		delete(r.timers, key)
	}
}

// Len returns the number of armed timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
