package workflow

import (
	"errors"
	"fmt"
)

var ErrNoChanges = errors.New("no staged changes found")

// ValidationError reports user-supplied input that cannot be used.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Hint returns remediation text for the user.
func (e *ValidationError) Hint() string {
	return fmt.Sprintf("correct the %s and re-run.", e.Field)
}
