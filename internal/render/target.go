// Package render holds the display surfaces the page loader and the countdown
// engine draw on. Element ids follow the web page the service backs.
package render

import "errors"

// Element ids of the page.
const (
	UserLocation   = "userLocation"
	TodayTimes     = "todayTimes"
	TomorrowTimes  = "tomorrowTimes"
	UpcomingTimes  = "upcomingTimes"
	LoadingSpinner = "loadingSpinner"
)

// ErrNoElement is returned by SetText when the id is not on the page.
var ErrNoElement = errors.New("no such element")

// Target is anything the page can be drawn on.
type Target interface {
	// SetText replaces the text of a single element or live slot.
	SetText(id, text string) error
	// AppendListItem adds a static item to a list.
	AppendListItem(listID, text string)
	// AppendLiveItem adds an item made of a static label followed by a
	// slot that later SetText calls address by slotID.
	AppendLiveItem(listID, label, slotID string)
	// ClearList removes every item of a list together with its slots.
	ClearList(listID string)
	// SetVisible toggles an indicator such as the loading spinner.
	SetVisible(id string, visible bool)
}

// Flusher is implemented by targets that batch their output.
type Flusher interface {
	Flush() error
}
