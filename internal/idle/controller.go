// Package idle implements the inactivity watcher for back-office sessions.
// After a configurable quiet period the session is locked and the owner must
// re-enter their password; after an absolute bound of unattended time the
// session is expired outright and a full re-login is forced.
package idle

import (
	"sync"
	"time"
)

// DefaultMaxIdle is the absolute unattended-session bound. Unlocking does
// not extend it; only genuine monitored activity does.
const DefaultMaxIdle = 60 * time.Minute

// DefaultCheckInterval is how often the absolute bound is evaluated.
const DefaultCheckInterval = time.Minute

// ExpireReasonInactivity is passed to OnExpire when the absolute bound hits.
const ExpireReasonInactivity = "inactivity"

// Config drives a Controller.
type Config struct {
	// IdleTimeout is the quiet period after which the session locks.
	IdleTimeout time.Duration
	// MaxIdle forces expiry regardless of lock state. Defaults to
	// DefaultMaxIdle when zero.
	MaxIdle time.Duration
	// CheckInterval is the cadence of the max-idle check. Defaults to
	// DefaultCheckInterval when zero.
	CheckInterval time.Duration
	// OnIdle runs once when the session transitions to Locked. The caller
	// presents the lock screen.
	OnIdle func()
	// OnExpire runs once when the absolute bound elapses. The caller
	// navigates to the login page with the given reason.
	OnExpire func(reason string)
}

// Controller watches activity for a single session. Active → Locked after
// IdleTimeout without a Touch; any state → Expired after MaxIdle since the
// last genuine activity.
type Controller struct {
	cfg Config

	mu             sync.Mutex
	lastActivityAt time.Time
	locked         bool
	expired        bool
	stopped        bool

	idleTimer *time.Timer
	done      chan struct{}

	now func() time.Time
}

// NewController builds a stopped controller; call Start to arm it.
func NewController(cfg Config) *Controller {
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultMaxIdle
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	return &Controller{cfg: cfg, now: time.Now}
}

// Start arms the idle timer and the max-idle watchdog.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return
	}
	c.lastActivityAt = c.now()
	c.idleTimer = time.NewTimer(c.cfg.IdleTimeout)
	c.done = make(chan struct{})
	go c.run(c.idleTimer, c.done)
}

func (c *Controller) run(idleTimer *time.Timer, done chan struct{}) {
	ticker := time.NewTicker(c.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-idleTimer.C:
			if cb := c.enterLocked(); cb != nil {
				cb()
			}
		case <-ticker.C:
			if cb, reason := c.checkMaxIdle(); cb != nil {
				cb(reason)
				return
			}
		}
	}
}

// Touch records monitored input activity. Ignored while locked or expired;
// background events must not silently keep a locked session alive.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked || c.expired || c.stopped || c.done == nil {
		return
	}
	c.lastActivityAt = c.now()
	c.idleTimer.Reset(c.cfg.IdleTimeout)
}

// Unlock returns a locked session to Active after the server accepted the
// password. The idle timer restarts, but lastActivityAt is deliberately not
// advanced: only genuine input counts against the absolute bound.
func (c *Controller) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked || c.expired || c.stopped {
		return
	}
	c.locked = false
	c.idleTimer.Reset(c.cfg.IdleTimeout)
}

// IsLocked reports whether the session is awaiting credential re-entry.
func (c *Controller) IsLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// IsExpired reports whether the absolute bound has forced a full re-login.
func (c *Controller) IsExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Stop cancels both timers. Used on teardown (navigation away, logout) so
// no callbacks fire afterwards.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopInner()
}

func (c *Controller) stopInner() {
	if c.stopped {
		return
	}
	c.stopped = true
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

func (c *Controller) enterLocked() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked || c.expired || c.stopped {
		return nil
	}
	c.locked = true
	return c.cfg.OnIdle
}

func (c *Controller) checkMaxIdle() (func(string), string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired || c.stopped {
		return nil, ""
	}
	if c.now().Sub(c.lastActivityAt) < c.cfg.MaxIdle {
		return nil, ""
	}
	// Supersedes the lock state: expiry wins even mid-lock.
	c.expired = true
	c.stopInner()
	return c.cfg.OnExpire, ExpireReasonInactivity
}
