// Package rclient implements the front-end half of the startup handoff:
// connect to the daemon's control socket, spawning and detaching a
// daemon first if the command needs one and none is reachable yet.
package rclient

import (
	"math/rand"
	"time"
)

// backoff parameters: 50ms initial interval, 25% jitter, doubling up to
// a 250ms ceiling, 1500ms total elapsed budget.
const (
	initialInterval   = 50 * time.Millisecond
	maxInterval       = 250 * time.Millisecond
	maxElapsed        = 1500 * time.Millisecond
	randomizationFrac = 0.25
)

// backoffSequence yields successive sleep durations until the cumulative
// elapsed budget is spent, then stops (the final attempt after the last
// yielded sleep is the caller's last try).
func backoffSequence() func() (time.Duration, bool) {
	interval := initialInterval
	var elapsed time.Duration
	return func() (time.Duration, bool) {
		if elapsed >= maxElapsed {
			return 0, false
		}
		jitter := time.Duration((rand.Float64()*2 - 1) * randomizationFrac * float64(interval))
		d := interval + jitter
		if d < 0 {
			d = 0
		}
		elapsed += d
		interval *= 2
		if interval > maxInterval {
			interval = maxInterval
		}
		return d, true
	}
}
