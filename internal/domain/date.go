package domain

import "time"

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// DateOnly normalizes t to midnight UTC so dates compare and hash by
// calendar day regardless of where the value came from.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing d. Purely civil
// calendar arithmetic, no timezone conversion.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return DateOnly(d).AddDate(0, 0, -offset)
}

func IsMonday(d time.Time) bool {
	return d.Weekday() == time.Monday
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
