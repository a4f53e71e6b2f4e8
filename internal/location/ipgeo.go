package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
)

// DefaultIPServices are tried in order when precise location is denied.
var DefaultIPServices = []string{
	"https://ipapi.co/json/",
	"https://geolocation-db.com/json/",
	"https://freeipapi.com/api/json",
	"https://ipwho.is/",
}

// IPLocator infers approximate coordinates from the caller's network address.
type IPLocator struct {
	httpClient *http.Client
	services   []string
	userAgent  string
}

// NewIPLocator creates a locator over services. An empty list means
// DefaultIPServices.
func NewIPLocator(httpClient *http.Client, userAgent string, services []string) *IPLocator {
	if len(services) == 0 {
		services = DefaultIPServices
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &IPLocator{httpClient: httpClient, services: services, userAgent: userAgent}
}

// Locate asks each service in turn and returns the first usable pair.
func (l *IPLocator) Locate(ctx context.Context) (model.Coordinates, error) {
	for _, service := range l.services {
		coords, err := l.query(ctx, service)
		if err != nil {
			log.Warn().Err(err).Str("service", service).Msg("IP geolocation service failed")
			continue
		}
		log.Info().Str("service", service).
			Float64("lat", coords.Latitude).
			Float64("lon", coords.Longitude).
			Msg("approximate location resolved")
		return coords, nil
	}
	return model.Coordinates{}, fmt.Errorf("all %d IP geolocation services failed: %w", len(l.services), ErrLocationUnavailable)
}

func (l *IPLocator) query(ctx context.Context, service string) (model.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service, nil)
	if err != nil {
		return model.Coordinates{}, err
	}
	req.Header.Set("Accept", "application/json")
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return model.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Coordinates{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body map[string]json.RawMessage
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&body); err != nil {
		return model.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}
	return coordinatesFrom(body)
}

// coordinatesFrom accepts both {latitude, longitude} and {lat, lon} shapes,
// with numbers or numeric strings. Zero values count as missing.
func coordinatesFrom(body map[string]json.RawMessage) (model.Coordinates, error) {
	shapes := [][2]string{{"latitude", "longitude"}, {"lat", "lon"}}
	for _, keys := range shapes {
		lat, ok := coordinate(body[keys[0]])
		if !ok {
			continue
		}
		lon, ok := coordinate(body[keys[1]])
		if !ok {
			continue
		}
		return model.Coordinates{Latitude: lat, Longitude: lon}, nil
	}
	return model.Coordinates{}, fmt.Errorf("no usable coordinates in response")
}

func coordinate(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if v == 0 {
		return 0, false
	}
	return v, true
}
