package epidemic

import "time"

// Calendar units used by the simulation. Time is the stdlib time.Duration;
// a simulated year is a flat 365 days, since the epidemiological model has
// no use for leap years.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// Age is a monotonically increasing duration since birth. The same type
// tracks the age of an infection inside a host.
type Age = time.Duration

// AgeOf builds an age from calendar components.
func AgeOf(years, months, days int) Age {
	return time.Duration(years)*Year + time.Duration(months)*Month + time.Duration(days)*Day
}

// Years converts an age to whole elapsed years.
func Years(a Age) int {
	return int(a / Year)
}

// TicksToDuration converts a tick count to simulated time. One tick unit is
// one simulated minute; drivers typically step in batches of 20.
func TicksToDuration(ticks int) time.Duration {
	return time.Duration(ticks) * time.Minute
}
