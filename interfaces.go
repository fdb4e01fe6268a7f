// Package diskshell contains the core domain types of a hierarchical file
// system simulated in memory and persisted to a single flat text store.
package diskshell

import "time"

// Clock supplies the moment stamped on new records
type Clock interface {
	Now() time.Time
}

// SystemClock is the [Clock] backed by the local wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
