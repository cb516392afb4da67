package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval bounds how long a paused run sleeps between checks
// when no wake-up arrives
const DefaultPollInterval = 200 * time.Millisecond

// Control lets another goroutine pause, resume or cancel a running Apply.
// The zero value is not usable; call NewControl.
type Control struct {
	cancelled atomic.Bool
	paused    atomic.Bool

	mu           sync.Mutex
	wake         chan struct{}
	pollInterval time.Duration
}

// NewControl returns a Control in the running state
func NewControl() *Control {
	return &Control{
		wake:         make(chan struct{}),
		pollInterval: DefaultPollInterval,
	}
}

// SetPollInterval changes the paused-state poll fallback. Non-positive
// values are ignored.
func (c *Control) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.pollInterval = d
	c.mu.Unlock()
}

// Cancel stops the run at the next record boundary
func (c *Control) Cancel() {
	c.cancelled.Store(true)
	c.broadcast()
}

func (c *Control) Pause() {
	c.paused.Store(true)
}

func (c *Control) Resume() {
	c.paused.Store(false)
	c.broadcast()
}

// TogglePause flips the paused state and reports the new one
func (c *Control) TogglePause() bool {
	for {
		old := c.paused.Load()
		if c.paused.CompareAndSwap(old, !old) {
			if old {
				c.broadcast()
			}
			return !old
		}
	}
}

func (c *Control) IsCancelled() bool {
	return c.cancelled.Load()
}

func (c *Control) IsPaused() bool {
	return c.paused.Load()
}

func (c *Control) broadcast() {
	c.mu.Lock()
	close(c.wake)
	c.wake = make(chan struct{})
	c.mu.Unlock()
}

// stopped reports whether the run must end, blocking while paused
func (c *Control) stopped(ctx context.Context) bool {
	for {
		if c.IsCancelled() || ctx.Err() != nil {
			return true
		}
		if !c.IsPaused() {
			return false
		}

		c.mu.Lock()
		wake, poll := c.wake, c.pollInterval
		c.mu.Unlock()

		timer := time.NewTimer(poll)
		select {
		case <-wake:
		case <-ctx.Done():
		case <-timer.C:
		}
		timer.Stop()
	}
}
