// Package timeslot holds the clock arithmetic behind matching: wall-clock
// parsing, interval overlap, and discretization of a window into candidate
// slots.
package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// DefaultStepMinutes is the stride between candidate slot starts.
const DefaultStepMinutes = 15

var ErrBadClock = errors.New("invalid clock, expected HH:MM")

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string. A single-digit hour like "9:00"
// is accepted; callers persist the canonical Clock.String() form.
func ParseClock(s string) (Clock, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return Clock(parsed.Hour()*60 + parsed.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c/60, c%60)
}

func (c Clock) Before(other Clock) bool { return c < other }

func (c Clock) After(other Clock) bool { return c > other }

// Add returns the clock shifted forward by the given number of minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// Overlap intersects the half-open intervals [aStart, aEnd) and [bStart, bEnd).
// An empty intersection yields zero minutes and zero bounds. Symmetric in its
// two intervals.
func Overlap(aStart, aEnd, bStart, bEnd Clock) (minutes int, start, end Clock) {
	start = aStart
	if bStart > start {
		start = bStart
	}
	end = aEnd
	if bEnd < end {
		end = bEnd
	}
	if start >= end {
		return 0, 0, 0
	}
	return int(end - start), start, end
}

// Slot is one candidate playing window.
type Slot struct {
	Start Clock
	End   Clock
}

// Slots enumerates every window of durationMinutes that fits inside
// [start, end), beginning at start and advancing by stepMinutes. The result is
// ordered earliest-first and is a pure function of its inputs. A non-positive
// step falls back to DefaultStepMinutes.
func Slots(start, end Clock, durationMinutes, stepMinutes int) []Slot {
	if durationMinutes <= 0 {
		return nil
	}
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}

	var slots []Slot
	for at := start; at.Add(durationMinutes) <= end; at = at.Add(stepMinutes) {
		slots = append(slots, Slot{Start: at, End: at.Add(durationMinutes)})
	}
	return slots
}
