package chat

import (
	"context"
	"strings"
	"sync"
)

// State is the controller's position in the turn lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateDelivering
)

// Controller orchestrates one conversation session. It owns all session
// state: the history, the partial-reveal buffer, and the loading flag. Other
// components never mutate that state directly; the delivery engine reaches
// it only through the narrow callbacks wired up in Submit.
//
// Only one turn may be in flight at a time; Submit rejects concurrent calls
// with ErrBusy. Aborting an in-flight turn is done by cancelling the context
// passed to Submit.
type Controller struct {
	service   Service
	deliverer *Deliverer
	onPartial PartialFunc

	mu       sync.Mutex
	history  *History
	inFlight string
	state    State
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnPartial registers a hook invoked with the accumulated partial answer
// after each fragment reveal, for rendering.
func WithOnPartial(fn PartialFunc) Option {
	return func(c *Controller) { c.onPartial = fn }
}

// WithDeliverer overrides the delivery engine, used by tests to control time.
func WithDeliverer(d *Deliverer) Option {
	return func(c *Controller) { c.deliverer = d }
}

// NewController creates an idle controller with an empty history.
func NewController(service Service, opts ...Option) *Controller {
	c := &Controller{
		service:   service,
		deliverer: NewDeliverer(),
		history:   NewHistory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resume seeds the history from previously persisted turns.
func (c *Controller) Resume(turns []Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, turn := range turns {
		c.history.Append(turn)
	}
}

// Submit runs one user turn end-to-end: validate, append the user turn,
// call the service with the full projected history, deliver the payload,
// and append the assistant turn. On any failure the history keeps the user
// turn and nothing else; the caller may resubmit, nothing is retried
// automatically.
func (c *Controller) Submit(ctx context.Context, prompt string) (Turn, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Turn{}, NewValidationError("prompt must not be empty")
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.state = StateSubmitting
	c.history.Append(NewUserTurn(prompt))
	messages := c.history.Project()
	c.mu.Unlock()

	payload, err := c.service.Send(ctx, messages)
	if err != nil {
		c.finish()
		return Turn{}, err
	}

	c.mu.Lock()
	c.state = StateDelivering
	c.mu.Unlock()

	var assistant Turn
	err = c.deliverer.Deliver(ctx, payload,
		func(text string) {
			c.mu.Lock()
			c.inFlight = text
			c.mu.Unlock()
			if c.onPartial != nil {
				c.onPartial(text)
			}
		},
		func(text string, timestamp int64) {
			assistant = NewAssistantTurn(text, timestamp)
			c.mu.Lock()
			c.history.Append(assistant)
			c.inFlight = ""
			c.mu.Unlock()
		},
	)
	c.finish()
	if err != nil {
		return Turn{}, err
	}
	return assistant, nil
}

// finish returns the controller to idle and discards any partial buffer.
func (c *Controller) finish() {
	c.mu.Lock()
	c.inFlight = ""
	c.state = StateIdle
	c.mu.Unlock()
}

// Clear empties the history. The controller does not prompt; callers must
// pass confirmed=true only after an explicit user confirmation. Clearing is
// refused while a turn is in flight.
func (c *Controller) Clear(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrBusy
	}
	c.history.Clear()
	c.inFlight = ""
	return nil
}

// History returns a copy of the conversation turns for rendering.
func (c *Controller) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Turns()
}

// InFlight returns the partial reveal buffer, empty when idle.
func (c *Controller) InFlight() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// IsLoading reports whether a turn is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateIdle
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
