package models

import "time"

// Per-weekday slot capacity. Sundays are closed for receiving.
const (
	WeekdayCapacity  = 12
	SaturdayCapacity = 5

	// MaxSlotNumber is a coarse sanity bound on submitted slot numbers,
	// checked by validation before the weekday capacity rule applies.
	MaxSlotNumber = 100
)

// CapacityFor returns the number of bookable slots for the given date.
// It is a pure function of the weekday: Monday-Friday 12, Saturday 5,
// Sunday 0 (no booking possible).
func CapacityFor(date time.Time) int {
	switch date.Weekday() {
	case time.Sunday:
		return 0
	case time.Saturday:
		return SaturdayCapacity
	default:
		return WeekdayCapacity
	}
}

// IsClosedDay reports whether bookings are forbidden on the given date.
func IsClosedDay(date time.Time) bool {
	return date.Weekday() == time.Sunday
}
