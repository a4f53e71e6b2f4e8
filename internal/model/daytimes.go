package model

// DayTimes holds the raw sunrise/sunset strings for one calendar day, exactly
// as the source delivered them. The primary source uses "DD.MM.YYYY" and
// "HH:MM:SS", the secondary API "YYYY-MM-DD" and "H:MM:SS AM".
type DayTimes struct {
	Date    string `json:"date"`
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// Source identifies which upstream produced a pair of DayTimes.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)
