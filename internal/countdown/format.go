package countdown

import (
	"fmt"
	"strings"
	"time"
)

// Expired is shown once a target instant has been reached.
const Expired = "Time passed"

// FormatRemaining renders the time left until a target.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return Expired
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// Identifier derives a registry key from a human label by lowercasing it and
// dropping everything that is not a letter or digit.
func Identifier(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SlotID is the render slot that shows the countdown for id.
func SlotID(id string) string {
	return id + "Countdown"
}
