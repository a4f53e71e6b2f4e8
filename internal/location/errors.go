package location

import "errors"

var (
	// ErrLocationDenied means precise location is unavailable or refused.
	ErrLocationDenied = errors.New("precise location denied")
	// ErrLocationUnavailable means every location source failed.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrGeocodeFailed means the place name could not be resolved.
	ErrGeocodeFailed = errors.New("reverse geocoding failed")
)
