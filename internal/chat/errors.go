package chat

import (
	"errors"
	"fmt"
)

// Kind classifies a failed turn. Callers branch on the kind, never on the
// message text.
type Kind int

const (
	// KindValidation means the input was rejected before any network call.
	KindValidation Kind = iota
	// KindTransport means the HTTP call itself failed (network, timeout, DNS).
	KindTransport
	// KindApplication means the service answered with a non-200 envelope code.
	KindApplication
	// KindMalformed means the envelope reported success but the payload was
	// missing the expected fields.
	KindMalformed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is the tagged failure type propagated through every layer.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the text suitable for a user-visible notification.
func (e *Error) UserMessage() string {
	return e.Message
}

// NewValidationError reports an input rejected before any state mutation.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewTransportError wraps a failed HTTP round trip.
func NewTransportError(message string, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// NewApplicationError reports a non-200 envelope code.
func NewApplicationError(message string) *Error {
	return &Error{Kind: KindApplication, Message: message}
}

// NewMalformedError reports a success envelope with missing fields.
func NewMalformedError(message string) *Error {
	return &Error{Kind: KindMalformed, Message: message}
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// reported as transport failures, the only layer that can produce them.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransport
}

// ErrBusy is returned by Submit when a previous turn is still in flight.
// Concurrent submissions are rejected rather than cancelling the in-flight
// delivery; the caller may retry once the controller is idle.
var ErrBusy = errors.New("a turn is already in flight")

// ErrNotConfirmed is returned by Clear when the caller has not obtained an
// explicit user confirmation.
var ErrNotConfirmed = errors.New("clear requires confirmation")
