package authbridge

import (
	"sync"

	"github.com/google/uuid"
)

// AuthStateListener observes auth-state transitions. It receives the cached
// [User] handle, or nil when the state is unauthenticated. Listeners run
// synchronously inside the event handler, in registration order; keep them
// short.
type AuthStateListener func(*User)

type listenerEntry struct {
	id uuid.UUID
	fn AuthStateListener
}

// listenerRegistry keeps listeners in FIFO registration order. The slice is
// copied before dispatch so callbacks may register or unsubscribe without
// holding the lock.
type listenerRegistry struct {
	mu      sync.Mutex
	entries []listenerEntry
}

func (r *listenerRegistry) add(fn AuthStateListener) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.entries = append(r.entries, listenerEntry{id: id, fn: fn})
	r.mu.Unlock()
	return id
}

func (r *listenerRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) snapshot() []listenerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]listenerEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// OnAuthStateChanged registers fn for future auth-state transitions and
// returns its unsubscribe function. When a state is already cached, fn is
// invoked immediately — synchronously, exactly once — with that state, so a
// late subscriber is never left stale. Only the last state is replayed,
// never historical transitions.
//
// After the returned function is called, fn receives no further
// notifications. Unsubscribing twice is harmless.
func (c *Client) OnAuthStateChanged(fn AuthStateListener) (unsubscribe func()) {
	if c == nil || fn == nil {
		return func() {}
	}

	id := c.reg.add(fn)

	c.mu.RLock()
	seeded := c.seeded
	u := c.user
	c.mu.RUnlock()

	if seeded {
		c.metricInc(MetricListenerNotifications)
		fn(u)
	}

	return func() {
		c.reg.remove(id)
	}
}

func (c *Client) notifyListeners(u *User) {
	for _, e := range c.reg.snapshot() {
		c.metricInc(MetricListenerNotifications)
		e.fn(u)
	}
}
