package timer

import (
	"errors"
	"fmt"
)

// ErrInvalidDuration is the sentinel behind every rejected duration update.
var ErrInvalidDuration = errors.New("both values must be positive numbers")

// ValidationError reports a rejected SetDurations call together with the
// values the caller proposed.
type ValidationError struct {
	Focus float64
	Break float64
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid durations (focus=%v, break=%v): %v", e.Focus, e.Break, ErrInvalidDuration)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidDuration}
	}
	return []error{ErrInvalidDuration, e.Err}
}
