package ports

import "time"

// Clock supplies current time. Injected everywhere the engine reads time
// so tests can control SLA arithmetic deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
