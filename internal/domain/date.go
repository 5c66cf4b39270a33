package domain

import "time"

const localDateLayout = "2006-01-02"

// LocalDate is a calendar day with no time zone attached. Day filters are
// encoded as YYYY-MM-DD strings and interpreted in the location the
// repository is configured with, never as UTC instants.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseLocalDate parses a YYYY-MM-DD string.
func ParseLocalDate(value string) (LocalDate, error) {
	parsed, err := time.Parse(localDateLayout, value)
	if err != nil {
		return LocalDate{}, err
	}
	return LocalDate{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

// String formats the date back to YYYY-MM-DD. ParseLocalDate and String
// round-trip for every valid input.
func (d LocalDate) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(localDateLayout)
}

// Bounds returns the half-open interval [00:00:00, next day 00:00:00)
// covering the calendar day in loc.
func (d LocalDate) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Contains reports whether ts falls on the calendar day in loc.
func (d LocalDate) Contains(ts time.Time, loc *time.Location) bool {
	start, end := d.Bounds(loc)
	return !ts.Before(start) && ts.Before(end)
}
