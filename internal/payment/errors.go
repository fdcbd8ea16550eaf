package payment

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("payment not found")

// ValidationError rejects a malformed creation request before any side
// effect happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
