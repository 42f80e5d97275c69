package cron

import "time"

// wallClock is an instant read through its local broken-down fields. All
// operations return a new value; arithmetic happens on the absolute
// timeline and the fields are re-read afterwards, so month lengths, leap
// years, weekdays and DST offsets come from the time package.
type wallClock struct {
	t time.Time
}

func wallClockAt(t time.Time, loc *time.Location) wallClock {
	return wallClock{t: t.In(loc)}
}

// month is zero based to match the stored month field.
func (w wallClock) month() int   { return int(w.t.Month()) - 1 }
func (w wallClock) day() int     { return w.t.Day() }
func (w wallClock) weekday() int { return int(w.t.Weekday()) }
func (w wallClock) hour() int    { return w.t.Hour() }
func (w wallClock) minute() int  { return w.t.Minute() }

func (w wallClock) add(d time.Duration) wallClock {
	return wallClock{t: w.t.Add(d)}
}

// truncateMinute zeroes the local seconds and sub-second part.
func (w wallClock) truncateMinute() wallClock {
	return w.add(-time.Duration(w.t.Second())*time.Second - time.Duration(w.t.Nanosecond()))
}

// firstOfNextMonth sets the calendar fields directly to 00:00 on the first
// day of the following month. The first of a month always exists, so no
// month-length arithmetic is involved.
func (w wallClock) firstOfNextMonth() wallClock {
	year, month := w.t.Year(), w.month()+1
	if month > 11 {
		month = 0
		year++
	}
	noon := time.Date(year, time.Month(month+1), 1, 12, 0, 0, 0, w.t.Location())
	return wallClock{t: startOfDay(noon)}
}

// startOfNextDay moves to 00:00 on the following calendar date. The date
// is stepped at noon, which no DST transition touches, so 23 and 25 hour
// days are neither skipped nor repeated.
func (w wallClock) startOfNextDay() wallClock {
	year, month, day := w.t.Date()
	noon := time.Date(year, month, day+1, 12, 0, 0, 0, w.t.Location())
	return wallClock{t: startOfDay(noon)}
}

// startOfNextHour advances one hour and rewinds to minute zero.
func (w wallClock) startOfNextHour() wallClock {
	next := w.add(time.Hour)
	return next.add(-time.Duration(next.minute()) * time.Minute)
}

// startOfDay returns the first instant of t's local date.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	if midnight.Day() != day {
		// Midnight sits in a DST gap and normalized onto the previous date.
		midnight = midnight.Add(time.Hour)
	}
	return midnight
}
