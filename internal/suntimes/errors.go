package suntimes

import (
	"errors"
	"fmt"
)

var (
	// ErrRelayExhausted means no relay endpoint produced a 2xx response.
	ErrRelayExhausted = errors.New("all relay endpoints failed")
	// ErrSecondaryAPI means the structured fallback API failed too.
	ErrSecondaryAPI = errors.New("secondary time API failed")
)

// EndpointError records why a single relay endpoint was rejected.
type EndpointError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *EndpointError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("endpoint %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("endpoint %s: status %d", e.Endpoint, e.StatusCode)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}
