// Package attendance holds the pure timing and pay rules for trainer
// check-in and check-out.
package attendance

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidTimeFormat = errors.New("time must be in HH:mm format")

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Clock turns session wall-clock times into absolute instants in the gym's timezone.
type Clock struct {
	Location *time.Location
}

// NewClock returns a Clock for loc, falling back to UTC when loc is nil.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Location: loc}
}

// ParseHHMM splits a "HH:mm" string into hour and minute.
func ParseHHMM(s string) (hour, minute int, err error) {
	m := hhmmPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// ToInstant combines the calendar day of date with the wall-clock time hhmm.
// Seconds and sub-second components are zero.
func (c Clock) ToInstant(date time.Time, hhmm string) (time.Time, error) {
	hour, minute, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc := c.location()
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc), nil
}

// Day returns midnight of the calendar day containing t.
func (c Clock) Day(t time.Time) time.Time {
	loc := c.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// MinutesBetween returns (a - b) in whole minutes, rounding half toward
// positive infinity. The result is positive when a is after b.
func MinutesBetween(a, b time.Time) int {
	return int(math.Floor(a.Sub(b).Minutes() + 0.5))
}

// MinutesUntil returns how many started minutes remain from now until t, or 0
// once t has passed.
func MinutesUntil(now, t time.Time) int {
	if !now.Before(t) {
		return 0
	}
	return int(math.Ceil(t.Sub(now).Minutes()))
}
