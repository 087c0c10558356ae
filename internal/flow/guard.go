package flow

import "sync"

// CallbackGuard enforces at-most-once delivery of the buyer-visible outcome
// of an attempt. The first of approve/cancel/error wins; later deliveries
// from superseded paths are silently dropped.
type CallbackGuard struct {
	mu        sync.Mutex
	delivered bool
}

// Deliver runs fn if no outcome was delivered yet and reports whether it ran.
func (g *CallbackGuard) Deliver(fn func()) bool {
	g.mu.Lock()
	if g.delivered {
		g.mu.Unlock()
		return false
	}
	g.delivered = true
	g.mu.Unlock()
	fn()
	return true
}

// Delivered reports whether an outcome has already been delivered.
func (g *CallbackGuard) Delivered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delivered
}

// Delegation is the controller-side tag that makes "exactly one live
// delegate" explicit: an attempt is either running its own flow or has
// handed the rest of its lifetime to the web checkout fallback.
type Delegation int

const (
	DelegationActive Delegation = iota
	DelegationDelegated
)
