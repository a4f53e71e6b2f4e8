package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var timeOfDay = regexp.MustCompile(`\b(\d{1,2}):(\d{2}):(\d{2})\b`)

// ExtractTimes finds the first line of raw that mentions dateLabel and reads
// the first two H:MM:SS substrings on it as sunrise and sunset. Hours are
// left-padded to two digits. The times are not checked for order or range.
func ExtractTimes(raw, dateLabel string) (sunrise, sunset string, err error) {
	var row string
	found := false
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, dateLabel) {
			row, found = line, true
			break
		}
	}
	if !found {
		return "", "", fmt.Errorf("no row for %s: %w", dateLabel, ErrParseFailed)
	}

	matches := timeOfDay.FindAllStringSubmatch(row, 2)
	if len(matches) < 2 {
		return "", "", fmt.Errorf("found %d times in row for %s: %w", len(matches), dateLabel, ErrParseFailed)
	}

	times := make([]string, 0, 2)
	for _, m := range matches {
		hour := m[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		times = append(times, hour+":"+m[2]+":"+m[3])
	}
	return times[0], times[1], nil
}
