// Package chat contains the core conversation logic: the turn model, the
// conversation history, the response interpreter, the delivery engine, and
// the session controller that ties one user turn together end-to-end.
package chat

import "context"

// Service is the backend chat-completion service as seen by the controller.
// Implementations perform one round trip with the full projected history and
// return an interpreted payload, or an *Error describing why the turn failed.
type Service interface {
	Send(ctx context.Context, messages []Message) (Payload, error)
}
