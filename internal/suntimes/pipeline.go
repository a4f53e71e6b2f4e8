// Package suntimes resolves sunrise and sunset times for a location, trying
// the scraped primary source through a chain of relays before falling back to
// a structured JSON API.
package suntimes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/parse"
)

// Submitter posts the times form to the primary source.
type Submitter interface {
	Submit(ctx context.Context, form url.Values) (string, error)
}

// DayFetcher reads one relative day from the structured API.
type DayFetcher interface {
	Day(ctx context.Context, coords model.Coordinates, day string) (model.DayTimes, error)
}

// Resolution is a pair of days from a single source.
type Resolution struct {
	Today    model.DayTimes `json:"today"`
	Tomorrow model.DayTimes `json:"tomorrow"`
	Source   model.Source   `json:"source"`
}

// Pipeline combines the primary and secondary sources.
type Pipeline struct {
	primary   Submitter
	secondary DayFetcher
}

func NewPipeline(primary Submitter, secondary DayFetcher) *Pipeline {
	return &Pipeline{primary: primary, secondary: secondary}
}

// Form builds the submission for one date.
func Form(loc model.Location, date time.Time) url.Values {
	label := parse.FormatDate(date)
	form := url.Values{}
	form.Set("yearDate", strconv.Itoa(date.Year()))
	form.Set("location", loc.FormLabel())
	form.Set("lat_deg", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	form.Set("lon_deg", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	form.Set("date", label)
	form.Set("end_date", label)
	return form
}

// ResolveDayTimes fetches one date from the primary source. Relay exhaustion
// and unparseable responses are both returned as errors.
func (p *Pipeline) ResolveDayTimes(ctx context.Context, loc model.Location, date time.Time) (model.DayTimes, error) {
	label := parse.FormatDate(date)

	raw, err := p.primary.Submit(ctx, Form(loc, date))
	if err != nil {
		return model.DayTimes{}, fmt.Errorf("fetch %s: %w", label, err)
	}

	sunrise, sunset, err := parse.ExtractTimes(raw, label)
	if err != nil {
		return model.DayTimes{}, err
	}
	return model.DayTimes{Date: label, Sunrise: sunrise, Sunset: sunset}, nil
}

// Resolve fetches today and tomorrow concurrently from the primary source
// and, if either fails, both from the secondary API. The returned pair always
// comes from one source.
func (p *Pipeline) Resolve(ctx context.Context, loc model.Location, today, tomorrow time.Time) (Resolution, error) {
	res, err := p.resolvePrimary(ctx, loc, today, tomorrow)
	if err == nil {
		log.Info().Str("today", res.Today.Date).Str("tomorrow", res.Tomorrow.Date).Msg("times resolved from primary source")
		return res, nil
	}
	log.Warn().Err(err).Msg("primary source failed, using secondary API")

	res, err = p.resolveSecondary(ctx, loc.Coordinates)
	if err != nil {
		log.Error().Err(err).Msg("secondary API failed")
		return Resolution{}, err
	}
	log.Info().Str("today", res.Today.Date).Str("tomorrow", res.Tomorrow.Date).Msg("times resolved from secondary API")
	return res, nil
}

func (p *Pipeline) resolvePrimary(ctx context.Context, loc model.Location, today, tomorrow time.Time) (Resolution, error) {
	res := Resolution{Source: model.SourcePrimary}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Today, err = p.ResolveDayTimes(gctx, loc, today)
		return err
	})
	g.Go(func() (err error) {
		res.Tomorrow, err = p.ResolveDayTimes(gctx, loc, tomorrow)
		return err
	})
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}
	return res, nil
}

func (p *Pipeline) resolveSecondary(ctx context.Context, coords model.Coordinates) (Resolution, error) {
	res := Resolution{Source: model.SourceSecondary}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.Today, err = p.secondary.Day(gctx, coords, Today)
		return err
	})
	g.Go(func() (err error) {
		res.Tomorrow, err = p.secondary.Day(gctx, coords, Tomorrow)
		return err
	})
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}
	return res, nil
}
