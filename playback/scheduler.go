package playback

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false if the
	// timer already fired or was stopped.
	Stop() bool
}

// Scheduler creates timers. The controller hops every callback back onto its
// executor, so implementations may fire on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// TimeScheduler schedules with the runtime timer heap.
type TimeScheduler struct{}

func (TimeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
