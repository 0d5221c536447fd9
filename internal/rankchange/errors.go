package rankchange

import (
	"errors"
	"fmt"
)

// FormatError reports an upstream payload that violates the data contract:
// a missing or unparseable date, or a malformed rank slot.
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("format error: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("format error: %s=%q: %s", e.Field, e.Value, e.Reason)
}

// IsFormatError reports whether err wraps a *FormatError
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
