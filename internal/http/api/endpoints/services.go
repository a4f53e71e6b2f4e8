package endpoints

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/location"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/page"
)

// Services are the collaborators shared by the API modules.
type Services struct {
	IP       location.Locator
	Geocoder location.ReverseGeocoder
	Times    page.TimesResolver
	Timezone *time.Location
	Clock    func() time.Time
}

func (s Services) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s Services) tz() *time.Location {
	if s.Timezone == nil {
		return time.Local
	}
	return s.Timezone
}

// resolver treats coordinates supplied by the client as its precise
// location. Without them the IP chain is used.
func (s Services) resolver(coords *model.Coordinates) *location.Resolver {
	return location.NewResolver(location.StaticLocator{Coordinates: coords}, s.IP, s.Geocoder)
}

// queryCoordinates reads lat and lon. Both absent is not an error.
func queryCoordinates(ctx *gin.Context) (*model.Coordinates, *api.Error) {
	latStr, lonStr := ctx.Query("lat"), ctx.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, api.Errorf(http.StatusBadRequest, "lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, api.Errorf(http.StatusBadRequest, "lon must be a number between -180 and 180")
	}
	return &model.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// parsePlace reads "city, subdivision, country"; missing parts stay empty.
func parsePlace(s string) *model.Place {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	p := &model.Place{City: parts[0]}
	if len(parts) > 1 {
		p.PrincipalSubdivision = parts[1]
	}
	if len(parts) > 2 {
		p.CountryName = strings.Join(parts[2:], ", ")
	}
	return p
}
