package suntimes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
)

// DefaultSunAPIURL is the base URL of the structured fallback API.
const DefaultSunAPIURL = "https://api.sunrisesunset.io"

// Relative days accepted by the API.
const (
	Today    = "today"
	Tomorrow = "tomorrow"
)

type sunAPIResponse struct {
	Results struct {
		Date    string `json:"date"`
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// SunAPI is a client for the sunrisesunset.io JSON API.
type SunAPI struct {
	httpClient *http.Client
	baseURL    string
}

// NewSunAPI creates a client. An empty baseURL means DefaultSunAPIURL.
func NewSunAPI(httpClient *http.Client, baseURL string) *SunAPI {
	if baseURL == "" {
		baseURL = DefaultSunAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SunAPI{httpClient: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Day fetches the times of a relative day ("today" or "tomorrow"). Every
// failure wraps ErrSecondaryAPI.
func (a *SunAPI) Day(ctx context.Context, coords model.Coordinates, day string) (model.DayTimes, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("date", day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/json?"+params.Encode(), nil)
	if err != nil {
		return model.DayTimes{}, fmt.Errorf("%w: %v", ErrSecondaryAPI, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return model.DayTimes{}, fmt.Errorf("%w: %v", ErrSecondaryAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.DayTimes{}, fmt.Errorf("%w: status %d", ErrSecondaryAPI, resp.StatusCode)
	}

	var body sunAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.DayTimes{}, fmt.Errorf("%w: decode %s: %v", ErrSecondaryAPI, day, err)
	}
	r := body.Results
	if r.Date == "" || r.Sunrise == "" || r.Sunset == "" {
		return model.DayTimes{}, fmt.Errorf("%w: incomplete results for %s", ErrSecondaryAPI, day)
	}
	return model.DayTimes{Date: r.Date, Sunrise: r.Sunrise, Sunset: r.Sunset}, nil
}
