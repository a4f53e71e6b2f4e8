package parse

import "time"

// Layouts used by the two upstream sources.
const (
	DottedDate = "02.01.2006"
	ISODate    = "2006-01-02"
	Clock24    = "15:04:05"
	Clock12    = "3:04:05 PM"
)

// FormatDate renders t as DD.MM.YYYY, the date format of the primary source.
func FormatDate(t time.Time) string {
	return t.Format(DottedDate)
}

// FormatClock renders an absolute time such as "Thu Mar 21 2024 6:04:27 AM".
func FormatClock(t time.Time) string {
	return t.Format("Mon Jan 02 2006 " + Clock12)
}
