package countdown

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/parse"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/render"
)

// Event is an upcoming sunrise or sunset.
type Event struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// ID is the registry key of the event.
func (e Event) ID() string {
	return Identifier(e.Label)
}

// SelectUpcoming picks the next sunrise/sunset pair. Before today's sunrise
// it is today's pair, otherwise tomorrow's pair, even if today's sunset is
// still ahead. Both events always belong to the same day.
func SelectUpcoming(todaySunrise, todaySunset, tomorrowSunrise, tomorrowSunset, now time.Time) []Event {
	if now.Before(todaySunrise) {
		return []Event{
			{Label: "Today's Sunrise", At: todaySunrise},
			{Label: "Today's Sunset", At: todaySunset},
		}
	}
	return []Event{
		{Label: "Tomorrow's Sunrise", At: tomorrowSunrise},
		{Label: "Tomorrow's Sunset", At: tomorrowSunset},
	}
}

// Instants converts a day's raw strings to sunrise and sunset instants.
func Instants(d model.DayTimes, loc *time.Location) (sunrise, sunset time.Time, err error) {
	if sunrise, err = parse.ParseToInstant(d.Date, d.Sunrise, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("sunrise of %s: %w", d.Date, err)
	}
	if sunset, err = parse.ParseToInstant(d.Date, d.Sunset, loc); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("sunset of %s: %w", d.Date, err)
	}
	return sunrise, sunset, nil
}

// Upcoming parses both days and applies SelectUpcoming.
func Upcoming(today, tomorrow model.DayTimes, loc *time.Location, now time.Time) ([]Event, error) {
	todayRise, todaySet, err := Instants(today, loc)
	if err != nil {
		return nil, err
	}
	tomorrowRise, tomorrowSet, err := Instants(tomorrow, loc)
	if err != nil {
		return nil, err
	}
	return SelectUpcoming(todayRise, todaySet, tomorrowRise, tomorrowSet, now), nil
}

// Display draws resolved times and keeps the registry in step with them.
type Display struct {
	out      render.Target
	registry *Registry
	loc      *time.Location
}

// NewDisplay creates a display. Instants are interpreted in loc.
func NewDisplay(out render.Target, registry *Registry, loc *time.Location) *Display {
	if loc == nil {
		loc = time.Local
	}
	return &Display{out: out, registry: registry, loc: loc}
}

// ShowDay replaces the contents of listID with the raw times of one day.
func (d *Display) ShowDay(listID string, day model.DayTimes) {
	d.out.ClearList(listID)
	d.out.AppendListItem(listID, "Sunrise: "+day.Sunrise)
	d.out.AppendListItem(listID, "Sunset: "+day.Sunset)
}

// ShowUpcoming selects the next pair of events relative to now, clears the
// upcoming list and the registry, and registers exactly the two new targets.
// Nothing is changed when a time fails to parse.
func (d *Display) ShowUpcoming(today, tomorrow model.DayTimes, now time.Time) ([]Event, error) {
	events, err := Upcoming(today, tomorrow, d.loc, now)
	if err != nil {
		return nil, err
	}

	d.out.ClearList(render.UpcomingTimes)
	d.registry.Clear()

	for _, ev := range events {
		id := ev.ID()
		d.out.AppendLiveItem(render.UpcomingTimes, ev.Label+" Countdown: ", SlotID(id))
		d.registry.Register(id, ev.At)
		d.out.AppendListItem(render.UpcomingTimes, ev.Label+": "+parse.FormatClock(ev.At.In(d.loc)))
	}
	log.Debug().Int("targets", d.registry.Len()).Msg("countdown targets registered")
	return events, nil
}
