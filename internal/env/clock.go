// The 24-hour simulation clock, derived from the monotonic tick counter.
package env

import "fmt"

// Tick-to-time constants: one tick is one sim-minute.
const (
	TicksPerHour = 60
	TicksPerDay  = 1440
)

// HourOfDay returns the hour [0,24) for a tick.
func HourOfDay(tick uint64) int {
	return int(tick / TicksPerHour % 24)
}

// BucketForTick classifies a tick into a time-of-day bucket.
func BucketForTick(tick uint64) TimeBucket {
	h := HourOfDay(tick)
	switch {
	case h >= 22 || h < 6:
		return BucketNight
	case h < 9:
		return BucketMorning
	case h < 17:
		return BucketWorkHours
	default:
		return BucketEvening
	}
}

// IsWorkHours reports whether the tick falls inside working hours (9–17).
func IsWorkHours(tick uint64) bool {
	return BucketForTick(tick) == BucketWorkHours
}

// IsSleepTime reports whether the tick falls inside typical sleep time.
func IsSleepTime(tick uint64) bool {
	return BucketForTick(tick) == BucketNight
}

// SimTime returns a human-readable simulation time string for a tick.
func SimTime(tick uint64) string {
	minutes := tick % 60
	hours := tick / 60 % 24
	days := tick/TicksPerDay + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
