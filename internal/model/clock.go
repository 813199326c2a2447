package model

import "time"

// Clock supplies the current time. Overdue checks and stored timestamps read
// it so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
