package parse

import (
	"errors"
	"fmt"
)

// ErrParseFailed is returned when a row, date or time cannot be read.
var ErrParseFailed = errors.New("parse failed")

// ParseError describes which component of a date/time pair was unreadable.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailed
}
