// Package cron parses five-field cron expressions and computes the next
// minute at which a schedule fires.
//
//	┌───────────── minute (0-59)
//	│ ┌───────────── hour (0-23)
//	│ │ ┌───────────── day of month (1-31)
//	│ │ │ ┌───────────── month (1-12)
//	│ │ │ │ ┌───────────── day of week (0-6, 0=Sunday)
//	│ │ │ │ │
//	* * * * *
//
// A field is either the wildcard * or a comma separated list of integers.
// Ranges, steps, names and macros are not supported.
//
// Schedules are evaluated against the host's local time. When both the
// day of month and the day of week are restricted, a time must satisfy
// both of them; this differs from POSIX cron, which accepts either.
package cron
