package flow

import (
	"sync"
	"time"
)

// Cooldown counts down whole seconds with a chained one-second callback and
// unlocks once it reaches zero.
type Cooldown struct {
	mu        sync.Mutex
	sched     Scheduler
	period    int
	remaining int
	started   bool
	stopped   bool
	gen       int
	timer     Timer
	onTick    func(remaining int)
}

// NewCooldown returns a stopped countdown of seconds. onTick, when set, is
// called after every decrement outside the cooldown's lock.
func NewCooldown(sched Scheduler, seconds int, onTick func(remaining int)) *Cooldown {
	if sched == nil {
		sched = RealScheduler
	}
	if seconds < 0 {
		seconds = 0
	}
	return &Cooldown{sched: sched, period: seconds, onTick: onTick}
}

// Start (re)arms the countdown at the full period.
func (c *Cooldown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked()
}

// Restart re-arms the countdown only when it has reached zero.
func (c *Cooldown) Restart() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.remaining > 0 {
		return false
	}
	c.startLocked()
	return true
}

func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Ready reports whether the countdown ran to zero.
func (c *Cooldown) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && c.remaining == 0
}

// Stop cancels the pending tick. The counter keeps its current value.
func (c *Cooldown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.cancelLocked()
}

func (c *Cooldown) startLocked() {
	c.cancelLocked()
	c.started = true
	c.stopped = false
	c.remaining = c.period
	c.scheduleLocked()
}

func (c *Cooldown) cancelLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Cooldown) scheduleLocked() {
	if c.remaining <= 0 || c.stopped {
		return
	}
	gen := c.gen
	c.timer = c.sched.AfterFunc(time.Second, func() { c.tick(gen) })
}

func (c *Cooldown) tick(gen int) {
	c.mu.Lock()
	// a tick armed before the last Start or Stop is stale
	if c.stopped || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.remaining--
	remaining := c.remaining
	c.scheduleLocked()
	onTick := c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}
