package parse

import (
	"strconv"
	"strings"
	"time"
)

// ParseToInstant combines a date and a time-of-day string into an instant in
// loc. Dates may be "DD.MM.YYYY" or "YYYY-MM-DD"; times may be 24-hour
// "HH:MM:SS" or 12-hour "H:MM:SS AM/PM". Seconds are optional. Any component
// that does not parse yields a *ParseError.
func ParseToInstant(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	year, month, day, err := parseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, second, err := parseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, &ParseError{Field: "date", Value: dateStr}
	}
	return t, nil
}

func parseDate(s string) (year, month, day int, err error) {
	var parts []string
	switch {
	case strings.Contains(s, "."):
		parts = strings.Split(s, ".")
		if len(parts) != 3 {
			return 0, 0, 0, &ParseError{Field: "date", Value: s}
		}
		parts[0], parts[2] = parts[2], parts[0]
	case strings.Contains(s, "-"):
		parts = strings.Split(s, "-")
		if len(parts) != 3 {
			return 0, 0, 0, &ParseError{Field: "date", Value: s}
		}
	default:
		return 0, 0, 0, &ParseError{Field: "date", Value: s}
	}

	if year, err = number("year", parts[0]); err != nil {
		return
	}
	if month, err = number("month", parts[1]); err != nil {
		return
	}
	if day, err = number("day", parts[2]); err != nil {
		return
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s}
	}
	return year, month, day, nil
}

func parseClock(s string) (hour, minute, second int, err error) {
	upper := strings.ToUpper(s)
	twelveHour := strings.Contains(upper, "AM") || strings.Contains(upper, "PM")
	pm := strings.Contains(upper, "PM")

	clock := strings.TrimSpace(s)
	if twelveHour {
		clock = strings.TrimSpace(strings.NewReplacer("AM", "", "PM", "").Replace(strings.ToUpper(clock)))
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, &ParseError{Field: "time", Value: s}
	}
	if hour, err = number("hour", parts[0]); err != nil {
		return
	}
	if minute, err = number("minute", parts[1]); err != nil {
		return
	}
	if len(parts) == 3 {
		if second, err = number("second", parts[2]); err != nil {
			return
		}
	}

	if twelveHour {
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, &ParseError{Field: "time", Value: s}
	}
	return hour, minute, second, nil
}

func number(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, &ParseError{Field: field, Value: s}
	}
	return n, nil
}
