// Package page runs one full page-load cycle: locate the user, resolve the
// times and hand them to the countdown display.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/countdown"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/location"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/render"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/suntimes"
)

// Messages shown to the user.
const (
	MsgUnavailable      = "Unable to detect location. Please refresh and allow location access for Agnihotra times."
	MsgLocationRequired = "Location access required for accurate Agnihotra timing"
	locationPrefix      = "Your Location: "
)

// Locator is the part of location.Resolver the loader needs.
type Locator interface {
	Locate(ctx context.Context) (model.Location, error)
	Name(ctx context.Context, loc model.Location) model.Location
}

// TimesResolver is the part of suntimes.Pipeline the loader needs.
type TimesResolver interface {
	Resolve(ctx context.Context, loc model.Location, today, tomorrow time.Time) (suntimes.Resolution, error)
}

// Result summarises a completed load.
type Result struct {
	Location model.Location      `json:"location"`
	Times    suntimes.Resolution `json:"times"`
	Upcoming []countdown.Event   `json:"upcoming"`
}

// Loader drives one page.
type Loader struct {
	locator Locator
	times   TimesResolver
	out     render.Target
	display *countdown.Display
	loc     *time.Location
	now     func() time.Time
}

// NewLoader wires a loader. Calendar days and instants use tz; a nil clock
// means time.Now.
func NewLoader(locator Locator, times TimesResolver, out render.Target, registry *countdown.Registry, tz *time.Location, clock func() time.Time) *Loader {
	if tz == nil {
		tz = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &Loader{
		locator: locator,
		times:   times,
		out:     out,
		display: countdown.NewDisplay(out, registry, tz),
		loc:     tz,
		now:     clock,
	}
}

// Load performs the cycle. Every failure leaves the page in a visible state
// and the spinner hidden; the returned error is for logging only.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	l.out.SetVisible(render.LoadingSpinner, true)
	defer l.flush()
	defer l.out.SetVisible(render.LoadingSpinner, false)

	loc, err := l.locator.Locate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("all location detection methods failed")
		l.setText(render.UserLocation, MsgUnavailable)
		l.out.ClearList(render.UpcomingTimes)
		l.out.AppendListItem(render.UpcomingTimes, MsgLocationRequired)
		return nil, err
	}

	if loc.Precision == model.Approximate {
		l.setText(render.UserLocation, fmt.Sprintf("Identifying location... (%s)", loc.FormatCoordinates()))
	} else {
		l.setText(render.UserLocation, locationPrefix+loc.Label())
	}
	loc = l.locator.Name(ctx, loc)
	l.setText(render.UserLocation, locationPrefix+loc.Label())

	now := l.now().In(l.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.loc)
	tomorrow := today.AddDate(0, 0, 1)

	times, err := l.times.Resolve(ctx, loc, today, tomorrow)
	if err != nil {
		return nil, err
	}

	l.display.ShowDay(render.TodayTimes, times.Today)
	l.display.ShowDay(render.TomorrowTimes, times.Tomorrow)
	upcoming, err := l.display.ShowUpcoming(times.Today, times.Tomorrow, l.now())
	if err != nil {
		log.Error().Err(err).Str("source", string(times.Source)).Msg("cannot build countdowns")
		return nil, err
	}

	return &Result{Location: loc, Times: times, Upcoming: upcoming}, nil
}

// Status returns the user-facing text that matches a Load error.
func Status(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, location.ErrLocationUnavailable):
		return MsgUnavailable
	case errors.Is(err, suntimes.ErrSecondaryAPI):
		return "Sunrise and sunset times are unavailable right now."
	default:
		return "Sunrise and sunset times could not be read."
	}
}

func (l *Loader) setText(id, text string) {
	if err := l.out.SetText(id, text); err != nil {
		log.Debug().Err(err).Str("id", id).Msg("element missing")
	}
}

func (l *Loader) flush() {
	if f, ok := l.out.(render.Flusher); ok {
		if err := f.Flush(); err != nil {
			log.Error().Err(err).Msg("failed to flush page")
		}
	}
}
