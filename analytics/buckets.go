package analytics

import (
	"fmt"
	"time"
)

// Buckets are the calendar keys an event timestamp falls into.
type Buckets struct {
	Date  string // YYYY-MM-DD
	Week  string // YYYY-WW, weeks start on Sunday
	Month string // YYYY-MM
	Hour  string // HH
}

// BucketsFor derives the keys from the wall clock of loc at instant ts, so
// the zone's offset at that instant applies (DST included).
func BucketsFor(ts time.Time, loc *time.Location) Buckets {
	local := ts.In(loc)
	return Buckets{
		Date:  local.Format("2006-01-02"),
		Week:  fmt.Sprintf("%04d-%02d", local.Year(), weekOfYear(local)),
		Month: local.Format("2006-01"),
		Hour:  local.Format("15"),
	}
}

// weekOfYear numbers weeks from 00; days before the year's first Sunday are
// in week 00.
func weekOfYear(t time.Time) int {
	return (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
}
