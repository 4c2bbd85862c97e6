package chat

import (
	"context"
	"strings"
	"time"
)

// PartialFunc receives the accumulated text after each fragment reveal.
type PartialFunc func(text string)

// CompleteFunc receives the final text and its timestamp in epoch
// milliseconds exactly once per successful delivery.
type CompleteFunc func(text string, timestamp int64)

// Deliverer converts a payload into UI-visible reveals. Atomic payloads
// complete immediately with the server's timestamp. Chunked payloads are
// replayed fragment by fragment with a fixed pause between reveals; the
// completion timestamp is client wall-clock, since the server supplies none
// for the chunked path.
//
// A cancelled context stops further reveals and suppresses onComplete, so
// partial progress is never committed.
type Deliverer struct {
	// sleep and now are injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() int64
}

// NewDeliverer returns a Deliverer using real wall-clock time.
func NewDeliverer() *Deliverer {
	return &Deliverer{
		sleep: sleepContext,
		now:   NowMillis,
	}
}

// Deliver runs one payload to completion or cancellation. onPartial may be
// nil for callers that only want the final text. The returned error is nil
// on completion and ctx.Err() on cancellation.
func (d *Deliverer) Deliver(ctx context.Context, payload Payload, onPartial PartialFunc, onComplete CompleteFunc) error {
	switch p := payload.(type) {
	case AtomicPayload:
		if err := ctx.Err(); err != nil {
			return err
		}
		onComplete(p.Answer, p.Timestamp)
		return nil
	case ChunkedPayload:
		return d.deliverChunked(ctx, p, onPartial, onComplete)
	default:
		return NewMalformedError(genericErrorMessage)
	}
}

func (d *Deliverer) deliverChunked(ctx context.Context, p ChunkedPayload, onPartial PartialFunc, onComplete CompleteFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var accumulator strings.Builder
	for i, chunk := range p.Chunks {
		accumulator.WriteString(chunk)
		if onPartial != nil {
			onPartial(accumulator.String())
		}
		// No pause after the last fragment.
		if i == len(p.Chunks)-1 {
			break
		}
		if err := d.sleep(ctx, p.ChunkDelay); err != nil {
			return err
		}
	}

	// An empty chunk sequence completes immediately with an empty answer.
	onComplete(accumulator.String(), d.now())
	return nil
}

// sleepContext pauses for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
