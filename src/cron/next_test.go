package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextScenarios(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		from       time.Time
		want       time.Time
	}{
		{"every_minute", "* * * * *", utc(2020, 1, 1, 0, 0).Add(30 * time.Second), utc(2020, 1, 1, 0, 1)},
		{"half_past", "30 * * * *", utc(2020, 1, 1, 0, 0), utc(2020, 1, 1, 0, 30)},
		{"noon_strictly_after", "0 12 * * *", utc(2020, 1, 1, 12, 0), utc(2020, 1, 2, 12, 0)},
		{"first_of_month", "0 0 1 * *", utc(2020, 1, 15, 10, 0), utc(2020, 2, 1, 0, 0)},
		{"sunday_midnight", "0 0 * * 0", utc(2020, 1, 1, 0, 0), utc(2020, 1, 5, 0, 0)},
		{"minute_list", "5,10,15 * * * *", utc(2020, 1, 1, 0, 7), utc(2020, 1, 1, 0, 10)},
		{"minute_list_wraps_hour", "5,10,15 * * * *", utc(2020, 1, 1, 0, 15), utc(2020, 1, 1, 1, 5)},
		{"year_rollover", "0 7 * * *", utc(2026, 12, 31, 8, 0), utc(2027, 1, 1, 7, 0)},
		{"january_first", "0 0 1 1 *", utc(2026, 3, 15, 12, 0), utc(2027, 1, 1, 0, 0)},
		{"december_only", "0 0 1 12 *", utc(2026, 1, 1, 0, 0), utc(2026, 12, 1, 0, 0)},
		{"skips_short_months", "0 0 31 * *", utc(2026, 2, 1, 0, 0), utc(2026, 3, 31, 0, 0)},
		{"leap_day", "0 0 29 2 *", utc(2026, 1, 1, 0, 0), utc(2028, 2, 29, 0, 0)},
		{"last_minute_of_year", "59 23 31 12 *", utc(2026, 6, 1, 0, 0), utc(2026, 12, 31, 23, 59)},
		{"hour_list", "0 8,12,18 * * *", utc(2026, 2, 18, 12, 0), utc(2026, 2, 18, 18, 0)},
		{"weekdays", "0 9 * * 1,2,3,4,5", utc(2026, 2, 20, 10, 0), utc(2026, 2, 23, 9, 0)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next, err := mustParse(t, test.expression).Next(test.from)
			require.NoError(t, err)
			assert.True(t, test.want.Equal(next), "Next(%v) = %v, want %v", test.from, next, test.want)
		})
	}
}

func TestNextDayOfMonthAndWeekdayBothApply(t *testing.T) {
	// 13th of the month that is also a Friday. POSIX cron would accept
	// either; this schedule requires both.
	schedule := mustParse(t, "0 0 13 * 5")

	next, err := schedule.Next(utc(2026, 1, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2026, 2, 13, 0, 0), next)
	assert.Equal(t, time.Friday, next.Weekday())

	next, err = schedule.Next(next)
	require.NoError(t, err)
	assert.Equal(t, utc(2026, 3, 13, 0, 0), next)

	next, err = schedule.Next(next)
	require.NoError(t, err)
	assert.Equal(t, utc(2026, 11, 13, 0, 0), next)
}

func TestNextWeekdayAfterMonthJump(t *testing.T) {
	// The month jump must see the weekday of the new date, not the old one.
	// March 1 2026 is a Sunday.
	schedule := mustParse(t, "0 0 * 3 0")

	next, err := schedule.Next(utc(2026, 2, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2026, 3, 1, 0, 0), next)
}

func TestNextStrictlyAfterMatch(t *testing.T) {
	schedule := mustParse(t, "30 10 * * *")
	from := utc(2026, 2, 18, 10, 30)

	next, err := schedule.Next(from)
	require.NoError(t, err)
	assert.True(t, next.After(from))
	assert.Equal(t, utc(2026, 2, 19, 10, 30), next)
}

func TestNextDropsSubMinutePrecision(t *testing.T) {
	schedule := mustParse(t, "0 * * * *")
	from := utc(2026, 2, 18, 10, 59).Add(59*time.Second + 999*time.Millisecond)

	next, err := schedule.Next(from)
	require.NoError(t, err)
	assert.Equal(t, utc(2026, 2, 18, 11, 0), next)
	assert.Zero(t, next.Second())
	assert.Zero(t, next.Nanosecond())
}

func TestNextConsecutiveCalls(t *testing.T) {
	schedule := mustParse(t, "0 0,6,12,18 * * *")

	cursor := utc(2026, 2, 18, 0, 0)
	expected := []time.Time{
		utc(2026, 2, 18, 6, 0),
		utc(2026, 2, 18, 12, 0),
		utc(2026, 2, 18, 18, 0),
		utc(2026, 2, 19, 0, 0),
		utc(2026, 2, 19, 6, 0),
	}
	for i, want := range expected {
		next, err := schedule.Next(cursor)
		require.NoError(t, err, "Next #%d", i)
		assert.Equal(t, want, next, "Next #%d", i)
		cursor = next
	}
}

func TestNextUnsatisfiable(t *testing.T) {
	for _, expression := range []string{
		"0 0 30 2 *",
		"0 0 31 4,6,9,11 *",
	} {
		t.Run(expression, func(t *testing.T) {
			next, err := mustParse(t, expression).Next(utc(2026, 1, 1, 0, 0))
			require.ErrorIs(t, err, ErrUnsatisfiable)
			assert.True(t, next.IsZero())
			assert.Contains(t, err.Error(), expression)
		})
	}
}

func TestNextRareButSatisfiable(t *testing.T) {
	// Feb 29 falling on a Monday: 2016, then 2044.
	next, err := mustParse(t, "0 0 29 2 1").Next(utc(2016, 3, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2044, 2, 29, 0, 0), next)
}

func TestNextZeroScheduleNeverFires(t *testing.T) {
	_, err := Schedule{}.Next(utc(2026, 1, 1, 0, 0))
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestNextFromNow(t *testing.T) {
	before := time.Now()
	next, err := mustParse(t, "* * * * *").NextFromNow()
	require.NoError(t, err)

	assert.True(t, next.After(before))
	assert.LessOrEqual(t, next.Sub(before), 2*time.Minute)
	assert.Zero(t, next.Second())
}

func TestNextUsesLocalTime(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	schedule := mustParse(t, "0 9 * * *")

	// 00:30 UTC is 09:30 in Tokyo, so the next 09:00 there is tomorrow.
	next, err := schedule.nextIn(utc(2026, 2, 18, 0, 30), tokyo)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 19, 9, 0, 0, 0, tokyo), next)
	assert.Equal(t, utc(2026, 2, 19, 0, 0), next.UTC())
}

func TestNextDaylightSaving(t *testing.T) {
	newYork := mustLoad(t, "America/New_York")
	at := func(month time.Month, day, hour, minute int) time.Time {
		return time.Date(2021, month, day, hour, minute, 0, 0, newYork)
	}

	t.Run("skipped_time_waits_a_day", func(t *testing.T) {
		// 02:30 does not exist on 2021-03-14.
		next, err := mustParse(t, "30 2 * * *").nextIn(at(3, 13, 3, 0), newYork)
		require.NoError(t, err)
		assert.Equal(t, at(3, 15, 2, 30), next)
	})

	t.Run("short_day", func(t *testing.T) {
		next, err := mustParse(t, "0 0 15 * *").nextIn(at(3, 14, 0, 0), newYork)
		require.NoError(t, err)
		assert.Equal(t, at(3, 15, 0, 0), next)
	})

	t.Run("short_day_reached_from_late_evening", func(t *testing.T) {
		next, err := mustParse(t, "0 12 14 3 *").nextIn(at(3, 13, 23, 30), newYork)
		require.NoError(t, err)
		assert.Equal(t, at(3, 14, 12, 0), next)
	})

	t.Run("long_day", func(t *testing.T) {
		// 2021-11-07 has 25 hours; a plain 24h step stays on the 7th.
		next, err := mustParse(t, "0 0 8 * *").nextIn(at(11, 7, 0, 0), newYork)
		require.NoError(t, err)
		assert.Equal(t, at(11, 8, 0, 0), next)
	})

	t.Run("repeated_hour_fires_twice", func(t *testing.T) {
		schedule := mustParse(t, "30 1 * * *")

		first, err := schedule.nextIn(at(11, 7, 0, 0), newYork)
		require.NoError(t, err)
		assert.Equal(t, at(11, 7, 1, 30), first)

		second, err := schedule.nextIn(first, newYork)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, second.Sub(first))
		assert.Equal(t, 1, second.Hour())
		assert.Equal(t, 30, second.Minute())
	})

	t.Run("hourly_through_fold", func(t *testing.T) {
		schedule := mustParse(t, "0 * * * *")
		cursor := at(11, 7, 0, 30)
		var got []time.Duration
		for i := 0; i < 4; i++ {
			next, err := schedule.nextIn(cursor, newYork)
			require.NoError(t, err)
			got = append(got, next.Sub(cursor))
			cursor = next
		}
		assert.Equal(t, []time.Duration{30 * time.Minute, time.Hour, time.Hour, time.Hour}, got)
	})
}
