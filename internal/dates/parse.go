// Package dates resolves banner date ranges from page headers, legacy
// duration lines and tabbed summoning sections.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// ErrUnparseable is returned for date text that does not read as "Month Day[, Year]".
var ErrUnparseable = errors.New("unparseable date")

// separators are tried in order; the first one present splits the range.
var separators = []string{"~", "-", "～"}

type monthDay struct {
	month time.Month
	day   int
	year  int
}

// Split breaks a range such as "March 5 ~ March 12" into its start and end
// text. The end is empty when no separator is present.
func Split(s string) (string, string) {
	for _, sep := range separators {
		if start, end, ok := strings.Cut(s, sep); ok {
			return strings.TrimSpace(start), strings.TrimSpace(end)
		}
	}
	return strings.TrimSpace(s), ""
}

// parseMonthDay reads "Month Day" with an optional explicit year anywhere after
// the day. Years outside 2001-2099 are not treated as years.
func (r *Resolver) parseMonthDay(s string) (monthDay, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) < 2 {
		return monthDay{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	month, ok := r.months[fields[0]]
	if !ok {
		return monthDay{}, fmt.Errorf("%w: unknown month in %q", ErrUnparseable, s)
	}
	day, err := strconv.Atoi(digits(fields[1]))
	if err != nil {
		return monthDay{}, fmt.Errorf("%w: no day in %q", ErrUnparseable, s)
	}

	md := monthDay{month: time.Month(month), day: day}
	for _, f := range fields[2:] {
		if y, err := strconv.Atoi(f); err == nil && y > 2000 && y < 2100 {
			md.year = y
			break
		}
	}
	return md, nil
}

// ParseRange parses start and end text in the context of year. A missing or
// unreadable end collapses onto the start. An end month before the start month
// rolls into the following year.
func (r *Resolver) ParseRange(start, end string, year int) (model.DateRange, error) {
	s, err := r.parseMonthDay(start)
	if err != nil {
		return model.DateRange{}, err
	}
	if s.year == 0 {
		s.year = year
	}
	startDate, err := validDate(s)
	if err != nil {
		return model.DateRange{}, err
	}

	e, err := r.parseMonthDay(end)
	if strings.TrimSpace(end) == "" || err != nil {
		return model.NewDateRange(startDate, startDate), nil
	}
	if e.year == 0 {
		e.year = s.year
		if e.month < s.month {
			e.year++
		}
	}
	endDate, err := validDate(e)
	if err != nil {
		endDate = startDate
	}
	return model.NewDateRange(startDate, endDate), nil
}

// ParseSpan splits a range string and parses both halves.
func (r *Resolver) ParseSpan(s string, year int) (model.DateRange, error) {
	start, end := Split(s)
	return r.ParseRange(start, end, year)
}

func validDate(md monthDay) (time.Time, error) {
	t := model.Date(md.year, md.month, md.day)
	if md.day < 1 || t.Month() != md.month || t.Day() != md.day {
		return time.Time{}, fmt.Errorf("%w: %s %d does not exist in %d", ErrUnparseable, md.month, md.day, md.year)
	}
	return t, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
