package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotLatest is returned when an edit targets an entry that is not the
// current head of a person's ledger.
var ErrNotLatest = errors.New("ledger: entry is not the latest for this username")

// ErrNoEntries is returned when an edit is attempted against an empty ledger.
var ErrNoEntries = errors.New("ledger: no entries for this username")

// FieldError describes why a single input field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// ValidationError collects every field rejection for one operation. Ledger
// mutations validate everything up front and apply nothing on failure.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (ve *ValidationError) add(field, message string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message})
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
