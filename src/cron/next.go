package cron

import (
	"fmt"
	"time"
)

// searchHorizonYears bounds the forward scan. The Gregorian calendar,
// weekdays included, repeats every 400 years, so a schedule with no match
// in that span never fires.
const searchHorizonYears = 400

// Next returns the earliest minute strictly after from whose local time
// satisfies the schedule. The result has zero seconds.
//
// Returns an error wrapping ErrUnsatisfiable when no such minute exists,
// e.g. for "0 0 30 2 *".
func (s Schedule) Next(from time.Time) (time.Time, error) {
	return s.nextIn(from, time.Local)
}

// NextFromNow is Next with from set to the current time.
func (s Schedule) NextFromNow() (time.Time, error) {
	return s.Next(time.Now())
}

func (s Schedule) nextIn(from time.Time, loc *time.Location) (time.Time, error) {
	// Always at least the next minute.
	w := wallClockAt(from, loc).truncateMinute().add(time.Minute)
	limit := from.AddDate(searchHorizonYears, 0, 0)

	for w.t.Before(limit) {
		next, relaxed := s.relax(w)
		if !relaxed {
			return w.t, nil
		}
		// A DST fold can rewind a reset field; never move backwards.
		if !next.t.After(w.t) {
			next = w.add(time.Minute)
		}
		w = next
	}

	return time.Time{}, fmt.Errorf("%w: %q within %d years of %s",
		ErrUnsatisfiable, s.expression, searchHorizonYears, from.Format(time.RFC3339))
}

// relax checks the fields coarsest first and, for the first one that does
// not match, returns the earliest candidate that could. Finer fields are
// reset to their minimum so no valid time is skipped.
func (s Schedule) relax(w wallClock) (wallClock, bool) {
	switch {
	case !s.month.Allows(w.month()):
		return w.firstOfNextMonth(), true
	case !s.day.Allows(w.day()):
		// Day of month goes first: rolling it may change the month.
		return w.startOfNextDay(), true
	case !s.dayOfWeek.Allows(w.weekday()):
		return w.startOfNextDay(), true
	case !s.hour.Allows(w.hour()):
		return w.startOfNextHour(), true
	case !s.minute.Allows(w.minute()):
		return w.add(time.Minute), true
	}
	return w, false
}
