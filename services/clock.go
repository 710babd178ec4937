package services

import "time"

// Clock supplies the current time. Every time read in the queue core
// goes through it so tests can pin the clock to a known instant.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the real wall clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time {
	return time.Now()
}

var clockInstance Clock = SystemClock{}

// GetClock returns the active clock instance
func GetClock() Clock {
	return clockInstance
}

// SetClock sets the clock instance (primarily for testing)
func SetClock(c Clock) {
	clockInstance = c
}

// DateString formats a time as the YYYY-MM-DD key used for queue dates,
// special-hours lookups and counter rows.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
