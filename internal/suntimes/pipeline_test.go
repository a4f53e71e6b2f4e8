package suntimes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/parse"
)

var delhi = model.Location{
	Coordinates: model.Coordinates{Latitude: 28.6139, Longitude: 77.2090},
	Precision:   model.Precise,
}

var (
	march21 = time.Date(2024, time.March, 21, 0, 0, 0, 0, time.UTC)
	march22 = march21.AddDate(0, 0, 1)
)

// upstream answers like the results page: one table row per requested date.
func upstream(t *testing.T, rows map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		date := r.PostForm.Get("date")
		fmt.Fprintf(w, "<html><body><table>\n<tr><td>Date</td><td>Sunrise</td><td>Sunset</td></tr>\n")
		if row, ok := rows[date]; ok {
			fmt.Fprintf(w, "<tr><td>%s</td>%s</tr>\n", date, row)
		}
		fmt.Fprintf(w, "</table></body></html>\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sunAPI(t *testing.T, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/json", r.URL.Path)
		assert.Equal(t, "28.6139", r.URL.Query().Get("lat"))
		assert.Equal(t, "77.209", r.URL.Query().Get("lng"))
		w.WriteHeader(status)
		switch r.URL.Query().Get("date") {
		case Today:
			fmt.Fprint(w, `{"results":{"date":"2024-03-21","sunrise":"6:24:10 AM","sunset":"6:30:41 PM"},"status":"OK"}`)
		case Tomorrow:
			fmt.Fprint(w, `{"results":{"date":"2024-03-22","sunrise":"6:23:02 AM","sunset":"6:31:13 PM"},"status":"OK"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFormFields(t *testing.T) {
	form := Form(delhi, march21)
	assert.Equal(t, "2024", form.Get("yearDate"))
	assert.Equal(t, "28.6139, 77.2090", form.Get("location"))
	assert.Equal(t, "28.6139", form.Get("lat_deg"))
	assert.Equal(t, "77.209", form.Get("lon_deg"))
	assert.Equal(t, "21.03.2024", form.Get("date"))
	assert.Equal(t, "21.03.2024", form.Get("end_date"))
}

func TestResolveDayTimesEndToEnd(t *testing.T) {
	srv := upstream(t, map[string]string{"21.03.2024": "<td>06:04:27</td><td>18:07:52</td>"})
	p := NewPipeline(NewRelayClient(nil, []string{srv.URL}), nil)

	day, err := p.ResolveDayTimes(context.Background(), delhi, march21)
	require.NoError(t, err)
	assert.Equal(t, model.DayTimes{Date: "21.03.2024", Sunrise: "06:04:27", Sunset: "18:07:52"}, day)
}

func TestResolveDayTimesParseFailure(t *testing.T) {
	srv := upstream(t, map[string]string{"21.03.2024": "<td>06:04:27</td>"})
	p := NewPipeline(NewRelayClient(nil, []string{srv.URL}), nil)

	_, err := p.ResolveDayTimes(context.Background(), delhi, march21)
	assert.ErrorIs(t, err, parse.ErrParseFailed)
}

func TestResolvePrimary(t *testing.T) {
	var apiHits int32
	srv := upstream(t, map[string]string{
		"21.03.2024": "<td>6:04:27</td><td>18:07:52</td>",
		"22.03.2024": "<td>6:03:10</td><td>18:08:21</td>",
	})
	api := sunAPI(t, http.StatusOK, &apiHits)
	p := NewPipeline(NewRelayClient(nil, []string{srv.URL}), NewSunAPI(nil, api.URL))

	res, err := p.Resolve(context.Background(), delhi, march21, march22)
	require.NoError(t, err)
	assert.Equal(t, model.SourcePrimary, res.Source)
	assert.Equal(t, "06:04:27", res.Today.Sunrise)
	assert.Equal(t, "06:03:10", res.Tomorrow.Sunrise)
	assert.Equal(t, "22.03.2024", res.Tomorrow.Date)
	assert.Zero(t, apiHits)
}

func TestResolveFallsBackWhenOneDayFails(t *testing.T) {
	var apiHits int32
	srv := upstream(t, map[string]string{"21.03.2024": "<td>06:04:27</td><td>18:07:52</td>"})
	api := sunAPI(t, http.StatusOK, &apiHits)
	p := NewPipeline(NewRelayClient(nil, []string{srv.URL}), NewSunAPI(nil, api.URL+"/"))

	res, err := p.Resolve(context.Background(), delhi, march21, march22)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSecondary, res.Source)
	assert.Equal(t, model.DayTimes{Date: "2024-03-21", Sunrise: "6:24:10 AM", Sunset: "6:30:41 PM"}, res.Today)
	assert.Equal(t, model.DayTimes{Date: "2024-03-22", Sunrise: "6:23:02 AM", Sunset: "6:31:13 PM"}, res.Tomorrow)
	assert.Equal(t, int32(2), apiHits)
}

func TestResolveFallsBackWhenRelaysExhausted(t *testing.T) {
	var relayHits, apiHits int32
	down := statusServer(t, http.StatusInternalServerError, `{"error":"Failed"}`, &relayHits)
	api := sunAPI(t, http.StatusOK, &apiHits)
	p := NewPipeline(NewRelayClient(nil, []string{down.URL}), NewSunAPI(nil, api.URL))

	res, err := p.Resolve(context.Background(), delhi, march21, march22)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSecondary, res.Source)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&relayHits), int32(1))
}

func TestResolveSecondaryFailure(t *testing.T) {
	var relayHits, apiHits int32
	down := statusServer(t, http.StatusBadGateway, "", &relayHits)
	api := sunAPI(t, http.StatusInternalServerError, &apiHits)
	p := NewPipeline(NewRelayClient(nil, []string{down.URL}), NewSunAPI(nil, api.URL))

	_, err := p.Resolve(context.Background(), delhi, march21, march22)
	assert.ErrorIs(t, err, ErrSecondaryAPI)
}

func TestSunAPIIncompleteResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":{"date":"2024-03-21"},"status":"OK"}`)
	}))
	defer srv.Close()

	_, err := NewSunAPI(srv.Client(), srv.URL).Day(context.Background(), delhi.Coordinates, Today)
	require.ErrorIs(t, err, ErrSecondaryAPI)
	assert.True(t, strings.Contains(err.Error(), "incomplete"))
}
