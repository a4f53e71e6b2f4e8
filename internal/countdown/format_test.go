package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{64*time.Minute + 27*time.Second, "1h 4m 27s"},
		{13*time.Hour + 7*time.Minute + 52*time.Second, "13h 7m 52s"},
		{26*time.Hour + 3*time.Second, "1d 2h 0m 3s"},
		{24 * time.Hour, "1d 0h 0m 0s"},
		{999 * time.Millisecond, "0h 0m 0s"},
		{0, Expired},
		{-time.Hour, Expired},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), tt.in.String())
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "todayssunrise", Identifier("Today's Sunrise"))
	assert.Equal(t, "tomorrowssunset", Identifier("Tomorrow's Sunset"))
	assert.Equal(t, "tomorrowssunsetCountdown", SlotID(Identifier("Tomorrow's Sunset")))
}
