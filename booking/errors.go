package booking

import "errors"

var (
	// ErrInvalidInput marks user-correctable request errors. Use errors.Is, the
	// concrete value is usually an *InputError carrying the message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFormat is returned by ToMinutes for anything that is not HH:mm.
	ErrInvalidFormat = errors.New("invalid time format, expected HH:mm")

	// ErrTableUnavailable means no table fits the party in the requested window.
	// It is a business outcome, never a system fault.
	ErrTableUnavailable = errors.New("table unavailable")

	ErrCancellationWindowClosed = errors.New("cancellation window closed")

	// ErrStoreFault wraps every failure of the reservation store.
	ErrStoreFault = errors.New("reservation store fault")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrUnknownTable        = errors.New("unknown table")
)

// InputError is a validation failure with a message that can be shown to the
// guest as is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}
