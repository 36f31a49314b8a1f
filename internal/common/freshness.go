package common

import "time"

// Idle reports whether last is older than timeout at now. A zero last is
// always idle; a non-positive timeout never expires anything.
func Idle(last, now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= timeout
}
