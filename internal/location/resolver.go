package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
)

// Locator returns coordinates from one kind of source.
type Locator interface {
	Locate(ctx context.Context) (model.Coordinates, error)
}

// ReverseGeocoder returns a place name for coordinates.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, coords model.Coordinates) (*model.Place, error)
}

// Resolver finds where the user is: precise location first, then the IP
// chain, then a best-effort place name.
type Resolver struct {
	device   DeviceLocator
	ip       Locator
	geocoder ReverseGeocoder
}

func NewResolver(device DeviceLocator, ip Locator, geocoder ReverseGeocoder) *Resolver {
	return &Resolver{device: device, ip: ip, geocoder: geocoder}
}

// Locate returns coordinates tagged with their precision. It fails with
// ErrLocationUnavailable only when both sources fail.
func (r *Resolver) Locate(ctx context.Context) (model.Location, error) {
	if r.device != nil {
		coords, err := r.device.Locate(ctx)
		if err == nil {
			return model.Location{Coordinates: coords, Precision: model.Precise}, nil
		}
		log.Info().Err(err).Msg("precise location unavailable, trying IP geolocation")
	}

	if r.ip == nil {
		return model.Location{}, ErrLocationUnavailable
	}
	coords, err := r.ip.Locate(ctx)
	if err != nil {
		if errors.Is(err, ErrLocationUnavailable) {
			return model.Location{}, err
		}
		return model.Location{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return model.Location{Coordinates: coords, Precision: model.Approximate}, nil
}

// Name attaches a place to loc. Failures are logged and loc is returned
// unchanged, so callers fall back to showing coordinates.
func (r *Resolver) Name(ctx context.Context, loc model.Location) model.Location {
	if r.geocoder == nil {
		return loc
	}
	place, err := r.geocoder.Reverse(ctx, loc.Coordinates)
	if err != nil {
		log.Warn().Err(err).
			Float64("lat", loc.Latitude).
			Float64("lon", loc.Longitude).
			Msg("using coordinates as location name")
		return loc
	}
	loc.Place = place
	return loc
}

// Resolve runs Locate and Name.
func (r *Resolver) Resolve(ctx context.Context) (model.Location, error) {
	loc, err := r.Locate(ctx)
	if err != nil {
		return model.Location{}, err
	}
	return r.Name(ctx, loc), nil
}
