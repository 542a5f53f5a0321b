package errors

// BodyConsumedError is returned when a request body is read a second time.
type BodyConsumedError struct {
	message string
}

func NewBodyConsumedError(msg string) *BodyConsumedError {
	return &BodyConsumedError{
		message: msg,
	}
}

func (bce *BodyConsumedError) Error() string {
	return bce.message
}

func (bce *BodyConsumedError) Consumed() {}
