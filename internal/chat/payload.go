package chat

import "time"

// Payload is the result of a successful service call, either a complete
// answer or a pre-chunked sequence intended for timed sequential reveal.
type Payload interface {
	isPayload()
}

// AtomicPayload is a complete answer revealed as one unit. Timestamp is
// server-authoritative, in epoch milliseconds.
type AtomicPayload struct {
	Answer    string
	Timestamp int64
}

func (AtomicPayload) isPayload() {}

// ChunkedPayload is an answer pre-split by the server into ordered fragments.
// Concatenating Chunks in order reconstitutes the full answer; ChunkDelay
// applies uniformly between consecutive reveals.
type ChunkedPayload struct {
	Chunks     []string
	ChunkDelay time.Duration
}

func (ChunkedPayload) isPayload() {}
