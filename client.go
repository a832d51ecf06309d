package authbridge

import (
	"context"
	"sync"
	"time"
)

// Client is the auth facade. It holds the single bridge subscription, the
// last-known [AuthState], and the cached [User] handle, and forwards every
// operation to the injected [Bridge] with a uniform (result, error) contract.
//
// Construct through [Builder.Build]. The zero value is not usable.
type Client struct {
	config  Config
	bridge  Bridge
	audit   *auditDispatcher
	metrics *Metrics

	reg listenerRegistry

	mu            sync.RWMutex
	authenticated bool
	seeded        bool
	user          *User
}

// Close releases facade-owned resources (the audit dispatcher). The
// underlying bridge subscription has no unsubscribe path and is not touched.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// CurrentUser returns the cached user handle, or nil when the last-known
// state is unauthenticated. The same handle is returned for as long as the
// same principal stays signed in; its fields track subsequent state events.
func (c *Client) CurrentUser() *User {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Authenticated reports whether the last-known state was authenticated.
func (c *Client) Authenticated() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// AuditDropped reports audit events discarded under backpressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot copies the facade's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

// seedState installs the initial state read from the bridge at construction.
// No listeners exist yet and no transition happened, so nothing is notified.
func (c *Client) seedState(state AuthState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyStateLocked(state)
	c.seeded = true
}

// handleAuthState is the bridge's single state handler. The bridge delivers
// events serialized, so this is the only writer of the cached state while
// the client is live.
func (c *Client) handleAuthState(state AuthState) {
	if c == nil {
		return
	}
	c.metricInc(MetricStateEvents)

	c.mu.Lock()
	c.applyStateLocked(state)
	c.seeded = true
	u := c.user
	c.mu.Unlock()

	uid := ""
	if u != nil {
		uid = u.UID()
	}
	c.emitAudit(context.Background(), auditEventStateChanged, true, uid, nil, func() map[string]string {
		return map[string]string{
			"authenticated": boolString(state.Authenticated),
		}
	})

	c.notifyListeners(u)
}

// applyStateLocked enforces the handle invariant: at most one cached User,
// created on sign-in, dropped on sign-out, mutated in place while the same
// principal persists. Caller holds c.mu.
func (c *Client) applyStateLocked(state AuthState) {
	if !state.Authenticated || state.User == nil {
		c.authenticated = false
		c.user = nil
		return
	}

	rec := cloneRecord(*state.User)
	c.authenticated = true
	if c.user != nil && c.user.UID() == rec.UID {
		c.user.apply(rec)
		return
	}
	c.user = newUser(c, rec)
}

// userForRecord returns the cached handle when rec matches it, so callers
// awaiting a forwarded operation and callers holding CurrentUser see the
// same object. A record the cache has not seen yet (the bridge event may not
// have arrived) gets a detached handle with the same forwarding behavior.
func (c *Client) userForRecord(rec UserRecord) *User {
	c.mu.RLock()
	u := c.user
	c.mu.RUnlock()
	if u != nil && u.UID() == rec.UID {
		return u
	}
	return newUser(c, cloneRecord(rec))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
