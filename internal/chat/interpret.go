package chat

import (
	"encoding/json"
	"time"
)

// Both backend endpoints answer with the same envelope: an application-level
// code distinct from the HTTP status, a message, and a data object whose
// shape depends on the endpoint. The HTTP layer may report 200 while the
// application layer reports a domain failure, so callers must only ever
// branch on the envelope code.

// Envelope is the common response wrapper of the chat service.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// envelopeData is the union of the data fields the two chat endpoints emit.
type envelopeData struct {
	// Atomic answer (simple endpoint)
	Answer string `json:"answer"`
	// Chunked answer (miniprogram endpoint)
	Chunks         []string `json:"chunks"`
	TotalChunks    int      `json:"total_chunks"`
	CompleteAnswer string   `json:"complete_answer"`
	ChunkDelay     int64    `json:"chunk_delay"` // milliseconds
	// Shared
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error"`
}

const genericErrorMessage = "unknown error"

// Interpret classifies an envelope into a delivery payload or a tagged
// failure. An envelope code of exactly 200 means success; anything else is
// an application failure carrying the server-provided error string, or a
// generic message when the server omitted one. A success envelope whose data
// carries neither chunks nor an answer is malformed.
func Interpret(env *Envelope) (Payload, error) {
	var data envelopeData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, NewMalformedError(genericErrorMessage)
		}
	}

	if env.Code != 200 {
		message := data.Error
		if message == "" {
			message = genericErrorMessage
		}
		return nil, NewApplicationError(message)
	}

	switch {
	case data.Chunks != nil:
		return ChunkedPayload{
			Chunks:     data.Chunks,
			ChunkDelay: time.Duration(data.ChunkDelay) * time.Millisecond,
		}, nil
	case data.Answer != "":
		return AtomicPayload{
			Answer:    data.Answer,
			Timestamp: data.Timestamp,
		}, nil
	default:
		return nil, NewMalformedError(genericErrorMessage)
	}
}

// InterpretBody decodes a raw response body and interprets it.
func InterpretBody(body []byte) (Payload, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewMalformedError(genericErrorMessage)
	}
	return Interpret(&env)
}
