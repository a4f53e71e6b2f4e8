package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/countdown"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/page"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/suntimes"
)

type upcomingResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	At        time.Time `json:"at"`
	Remaining string    `json:"remaining"`
}

type timesResponse struct {
	Source   model.Source       `json:"source"`
	Location model.Location     `json:"location"`
	Label    string             `json:"label"`
	Today    model.DayTimes     `json:"today"`
	Tomorrow model.DayTimes     `json:"tomorrow"`
	Upcoming []upcomingResponse `json:"upcoming"`
}

type timesController struct {
	svc Services
}

func newTimesController(svc Services) *timesController {
	return &timesController{svc: svc}
}

func TimesModule(svc Services) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		tc := newTimesController(svc)
		c.GET("/times", api.ResolveEndpoint(tc.getTimes))
	})
}

func (tc *timesController) getTimes(ctx *gin.Context) (any, *api.Error) {
	coords, apiErr := queryCoordinates(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if coords == nil {
		return nil, api.Errorf(http.StatusBadRequest, "lat and lon are required")
	}

	loc := model.Location{Coordinates: *coords, Precision: model.Precise, Place: parsePlace(ctx.Query("place"))}
	if loc.Place == nil {
		loc = tc.svc.resolver(coords).Name(ctx.Request.Context(), loc)
	}

	tz := tc.svc.tz()
	now := tc.svc.now().In(tz)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, tz)

	times, err := tc.svc.Times.Resolve(ctx.Request.Context(), loc, today, today.AddDate(0, 0, 1))
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve times")
		if errors.Is(err, suntimes.ErrSecondaryAPI) {
			return nil, api.Errorf(http.StatusBadGateway, page.Status(err))
		}
		return nil, api.Errorf(http.StatusInternalServerError, page.Status(err))
	}

	events, err := countdown.Upcoming(times.Today, times.Tomorrow, tz, now)
	if err != nil {
		log.Error().Err(err).Str("source", string(times.Source)).Msg("failed to read times")
		return nil, api.Errorf(http.StatusBadGateway, page.Status(err))
	}

	resp := timesResponse{
		Source:   times.Source,
		Location: loc,
		Label:    loc.Label(),
		Today:    times.Today,
		Tomorrow: times.Tomorrow,
		Upcoming: make([]upcomingResponse, 0, len(events)),
	}
	for _, ev := range events {
		resp.Upcoming = append(resp.Upcoming, upcomingResponse{
			ID:        ev.ID(),
			Label:     ev.Label,
			At:        ev.At,
			Remaining: countdown.FormatRemaining(ev.At.Sub(now)),
		})
	}
	return resp, nil
}
