package tz

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat matches every *FormatError via errors.Is.
	ErrFormat = errors.New("tz: unrecognized date/time text")
	// ErrUnknownTimezone matches every *UnknownTimezoneError via errors.Is.
	ErrUnknownTimezone = errors.New("tz: unknown timezone")
)

// FormatError reports text (or a pattern) that matches no recognized representation.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tz: cannot parse %q", e.Input)
	}
	return fmt.Sprintf("tz: cannot parse %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrFormat) succeed.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// UnknownTimezoneError reports an identifier that resolves to no zone.
type UnknownTimezoneError struct {
	Name string
	Err  error
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("tz: unknown timezone %q", e.Name)
}

// Is lets errors.Is(err, ErrUnknownTimezone) succeed.
func (e *UnknownTimezoneError) Is(target error) bool {
	return target == ErrUnknownTimezone
}

// Unwrap exposes the underlying lookup failure, if any.
func (e *UnknownTimezoneError) Unwrap() error {
	return e.Err
}

func formatErr(input, reason string) error {
	return &FormatError{Input: input, Reason: reason}
}
