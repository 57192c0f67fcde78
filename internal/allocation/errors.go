package allocation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount          = errors.New("amount must be a finite, non-negative number")
	ErrUnknownRole            = errors.New("unknown purchaser role")
	ErrUnknownMode            = errors.New("unknown purchase mode")
	ErrNoRule                 = errors.New("no rate rule for purchaser role and mode")
	ErrRateTableInvalid       = errors.New("invalid rate table")
	ErrAllocationExceedsTotal = errors.New("allocated components exceed purchase total")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
