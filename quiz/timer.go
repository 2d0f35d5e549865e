package quiz

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot callbacks. The countdown re-arms itself once per tick.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler runs callbacks on the runtime timer.
func RealScheduler() Scheduler {
	return realScheduler{}
}

// countdown tracks the single armed tick of a controller. Every arm or cancel
// bumps gen so a callback that was already in flight can detect it is stale.
type countdown struct {
	timer Timer
	gen   uint64
}

func (c *countdown) cancel() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *countdown) arm(s Scheduler, d time.Duration, fire func(gen uint64)) {
	c.cancel()
	gen := c.gen
	c.timer = s.AfterFunc(d, func() { fire(gen) })
}

// rearm schedules the next tick for the same question without invalidating gen.
func (c *countdown) rearm(s Scheduler, d time.Duration, fire func(gen uint64)) {
	gen := c.gen
	c.timer = s.AfterFunc(d, func() { fire(gen) })
}

func (c *countdown) current(gen uint64) bool {
	return c.gen == gen
}
