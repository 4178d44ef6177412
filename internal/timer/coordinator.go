// Package timer coordinates the countdowns a game session runs: a global
// session timer and a per-trial timer. Each role holds at most one active
// handle; starting a role cancels whatever was running under it, and an
// in-flight flag on the expiry path suppresses duplicate expiry handling
// until the role is started again.
package timer

import (
	"sync"
	"time"
)

// Role identifies an independent countdown within one session.
type Role int

const (
	// RoleSession bounds total play time.
	RoleSession Role = iota
	// RoleTrial bounds a single presentation, answer or feedback window.
	RoleTrial
)

// Ticker abstracts the 1-second tick source so tests can drive time by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a fresh ticker for each started countdown.
type TickerFactory func() Ticker

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// SecondTicker is the production factory: a time.Ticker firing every second.
func SecondTicker() Ticker {
	return &realTicker{t: time.NewTicker(time.Second)}
}

type handle struct {
	remaining int
	ticker    Ticker
	done      chan struct{}
}

// Coordinator owns every timer of one session.
type Coordinator struct {
	mu        sync.Mutex
	newTicker TickerFactory
	handles   map[Role]*handle
	inFlight  map[Role]bool
}

// NewCoordinator builds a coordinator; a nil factory uses real tickers.
func NewCoordinator(factory TickerFactory) *Coordinator {
	if factory == nil {
		factory = SecondTicker
	}
	return &Coordinator{
		newTicker: factory,
		handles:   make(map[Role]*handle),
		inFlight:  make(map[Role]bool),
	}
}

// Start begins a countdown for the role, cancelling any active handle of
// the same role first. onTick receives the remaining seconds after every
// tick; onExpire fires exactly once when the countdown reaches zero.
// Starting a role clears its expiry in-flight flag.
func (c *Coordinator) Start(role Role, seconds int, onTick func(remaining int), onExpire func()) {
	if seconds <= 0 {
		seconds = 1
	}

	c.mu.Lock()
	c.stopLocked(role)
	c.inFlight[role] = false
	h := &handle{
		remaining: seconds,
		ticker:    c.newTicker(),
		done:      make(chan struct{}),
	}
	c.handles[role] = h
	c.mu.Unlock()

	go c.run(role, h, onTick, onExpire)
}

func (c *Coordinator) run(role Role, h *handle, onTick func(int), onExpire func()) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C():
		}

		c.mu.Lock()
		if c.handles[role] != h {
			// Cancelled or replaced between tick and dispatch.
			c.mu.Unlock()
			return
		}
		h.remaining--
		remaining := h.remaining
		if remaining <= 0 {
			if c.inFlight[role] {
				c.mu.Unlock()
				return
			}
			c.inFlight[role] = true
			c.stopLocked(role)
			c.mu.Unlock()
			if onTick != nil {
				onTick(0)
			}
			if onExpire != nil {
				onExpire()
			}
			return
		}
		c.mu.Unlock()

		if onTick != nil {
			onTick(remaining)
		}
	}
}

// Stop cancels the role's countdown without firing its expiry callback.
// Safe to call when nothing is running.
func (c *Coordinator) Stop(role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked(role)
}

// StopAll cancels every active countdown.
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for role := range c.handles {
		c.stopLocked(role)
	}
}

func (c *Coordinator) stopLocked(role Role) {
	h, ok := c.handles[role]
	if !ok {
		return
	}
	delete(c.handles, role)
	h.ticker.Stop()
	close(h.done)
}

// Active reports whether the role has a running countdown.
func (c *Coordinator) Active(role Role) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handles[role]
	return ok
}

// Remaining returns the seconds left on the role's countdown, or 0 when
// none is running.
func (c *Coordinator) Remaining(role Role) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[role]; ok {
		return h.remaining
	}
	return 0
}
