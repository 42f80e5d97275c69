package cron

import "time"

// Schedule is a parsed cron expression. Use Parse to create one, then call
// Next to compute the next firing. A Schedule is immutable and may be
// shared between goroutines.
type Schedule struct {
	expression string
	minute     Field
	hour       Field
	day        Field
	month      Field // 0-11
	dayOfWeek  Field
}

// String returns the expression the schedule was parsed from.
func (s Schedule) String() string { return s.expression }

func (s Schedule) Minute() Field { return s.minute }
func (s Schedule) Hour() Field   { return s.hour }
func (s Schedule) Day() Field    { return s.day }

// Month returns the month field. Values are zero based: January is 0.
func (s Schedule) Month() Field { return s.month }

// DayOfWeek returns the weekday field, 0 being Sunday.
func (s Schedule) DayOfWeek() Field { return s.dayOfWeek }

// Matches reports whether t, viewed in its own location, satisfies every
// field of the schedule. Seconds are ignored.
func (s Schedule) Matches(t time.Time) bool {
	return s.matches(wallClock{t: t})
}

func (s Schedule) matches(w wallClock) bool {
	return s.month.Allows(w.month()) &&
		s.day.Allows(w.day()) &&
		s.dayOfWeek.Allows(w.weekday()) &&
		s.hour.Allows(w.hour()) &&
		s.minute.Allows(w.minute())
}
