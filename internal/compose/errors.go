package compose

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a source object missing a field that message
// synthesis requires, such as an issue without a title or a comment
// without an author. It marks bad tracker data, as opposed to network
// failures, and aborts only the affected thread.
type MissingFieldError struct {
	Object string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %s on %s", e.Field, e.Object)
}

// IsMissingField reports whether err (or any error in its chain) is a
// MissingFieldError.
func IsMissingField(err error) bool {
	var fieldErr *MissingFieldError
	return errors.As(err, &fieldErr)
}
