package model

import "time"

// DebugDateFormat is the month/day/year layout used in the per-region debug dumps.
const DebugDateFormat = "1/2/2006"

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive start/end pair. The zero value means "unknown".
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range, rolling the end forward a year when it lands
// before the start and collapsing it onto the start if that is still not enough.
func NewDateRange(start, end time.Time) DateRange {
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		end = end.AddDate(1, 0, 0)
		if end.Before(start) {
			end = start
		}
	}
	return DateRange{Start: start, End: end}
}

// IsZero reports whether no dates are known.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
