package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
)

// DefaultGeocodeURL is the reverse geocoding endpoint.
const DefaultGeocodeURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// Geocoder turns coordinates into a place name.
type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewGeocoder creates a geocoder. An empty baseURL means DefaultGeocodeURL.
func NewGeocoder(httpClient *http.Client, userAgent, baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Geocoder{httpClient: httpClient, baseURL: baseURL, userAgent: userAgent}
}

// Reverse resolves coords to a place. Every failure wraps ErrGeocodeFailed.
func (g *Geocoder) Reverse(ctx context.Context, coords model.Coordinates) (*model.Place, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%v", coords.Latitude))
	params.Set("longitude", fmt.Sprintf("%v", coords.Longitude))
	params.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGeocodeFailed, resp.StatusCode)
	}

	var place model.Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}
	return &place, nil
}
