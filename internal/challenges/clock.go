package challenges

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Clock maps instants to calendar days in a fixed location.
type Clock struct {
	Loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock for loc (UTC when nil).
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Loc: loc, now: time.Now}
}

// FixedClock returns a Clock frozen at t, for tests and tools.
func FixedClock(t time.Time, loc *time.Location) Clock {
	c := NewClock(loc)
	c.now = func() time.Time { return t }
	return c
}

// Now returns the current instant.
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Today returns the current day as YYYY-MM-DD.
func (c Clock) Today() string {
	return c.Day(c.Now())
}

// Day returns the day t falls on.
func (c Clock) Day(t time.Time) string {
	return t.In(c.location()).Format(dayLayout)
}

// PrevDay returns the day before day.
func (c Clock) PrevDay(day string) string {
	t, err := time.ParseInLocation(dayLayout, day, c.location())
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayLayout)
}

// Bounds returns the UTC instants [from, to) covering day.
func (c Clock) Bounds(day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, day, c.location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return t.UTC(), t.AddDate(0, 0, 1).UTC(), nil
}

func (c Clock) location() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}
