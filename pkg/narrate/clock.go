package narrate

import "time"

// Clock is the monotonic time source playback is scheduled against.
// The real implementation wraps the system clock; tests substitute a fake
// to drive completion and highlight timers deterministically.
type Clock interface {
	// Now returns the elapsed time on the clock.
	Now() time.Duration

	// AfterFunc runs f once after d has elapsed on the clock.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// systemClock implements Clock on top of the runtime's monotonic clock.
type systemClock struct {
	base time.Time
}

// NewSystemClock returns a Clock ticking from the moment of the call.
func NewSystemClock() Clock {
	return &systemClock{base: time.Now()}
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.base)
}

func (c *systemClock) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, f)
}
