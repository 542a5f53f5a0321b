package errors

import "fmt"

// ValidationError reports client input that cannot be forwarded upstream.
type ValidationError struct {
	field   string
	message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{
		field:   field,
		message: msg,
	}
}

func (ve *ValidationError) Error() string {
	if len(ve.field) == 0 {
		return ve.message
	}

	return fmt.Sprintf("%s: %s", ve.field, ve.message)
}

func (ve *ValidationError) Field() string {
	return ve.field
}

func (ve *ValidationError) Validation() {}
