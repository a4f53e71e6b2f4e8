package location

import (
	"context"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
)

// DeviceLocator provides precise, sensor based coordinates.
type DeviceLocator interface {
	Locate(ctx context.Context) (model.Coordinates, error)
}

// StaticLocator reports fixed coordinates, standing in for device sensors
// where the caller already knows its position.
type StaticLocator struct {
	Coordinates *model.Coordinates
}

func (s StaticLocator) Locate(ctx context.Context) (model.Coordinates, error) {
	if s.Coordinates == nil {
		return model.Coordinates{}, ErrLocationDenied
	}
	return *s.Coordinates, nil
}
