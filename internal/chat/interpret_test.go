package chat

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		data        string
		wantPayload Payload
		wantErrKind Kind
		wantErrMsg  string
		wantErr     bool
	}{
		{
			name: "chunked success",
			code: 200,
			data: `{"chunks":["Hi"," there","!"],"total_chunks":3,"complete_answer":"Hi there!","chunk_delay":50,"timestamp":1700000000}`,
			wantPayload: ChunkedPayload{
				Chunks:     []string{"Hi", " there", "!"},
				ChunkDelay: 50 * time.Millisecond,
			},
		},
		{
			name: "atomic success",
			code: 200,
			data: `{"answer":"hello","timestamp":1700000000000}`,
			wantPayload: AtomicPayload{
				Answer:    "hello",
				Timestamp: 1700000000000,
			},
		},
		{
			name: "empty chunk list is valid",
			code: 200,
			data: `{"chunks":[],"chunk_delay":50}`,
			wantPayload: ChunkedPayload{
				Chunks:     []string{},
				ChunkDelay: 50 * time.Millisecond,
			},
		},
		{
			name:        "application failure with message",
			code:        500,
			data:        `{"error":"upstream timeout","timestamp":1700000000}`,
			wantErr:     true,
			wantErrKind: KindApplication,
			wantErrMsg:  "upstream timeout",
		},
		{
			name:        "application failure without message",
			code:        500,
			data:        `{"timestamp":1700000000}`,
			wantErr:     true,
			wantErrKind: KindApplication,
			wantErrMsg:  "unknown error",
		},
		{
			name:        "application failure with empty data",
			code:        502,
			data:        ``,
			wantErr:     true,
			wantErrKind: KindApplication,
			wantErrMsg:  "unknown error",
		},
		{
			name:        "success code with missing fields",
			code:        200,
			data:        `{"timestamp":1700000000}`,
			wantErr:     true,
			wantErrKind: KindMalformed,
			wantErrMsg:  "unknown error",
		},
		{
			name:        "success code with undecodable data",
			code:        200,
			data:        `"not an object"`,
			wantErr:     true,
			wantErrKind: KindMalformed,
			wantErrMsg:  "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Code: tt.code}
			if tt.data != "" {
				env.Data = json.RawMessage(tt.data)
			}

			payload, err := Interpret(env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Interpret() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ce *Error
				if !errors.As(err, &ce) {
					t.Fatalf("Interpret() error = %T, want *Error", err)
				}
				if ce.Kind != tt.wantErrKind {
					t.Errorf("Interpret() error kind = %v, want %v", ce.Kind, tt.wantErrKind)
				}
				if ce.UserMessage() != tt.wantErrMsg {
					t.Errorf("Interpret() error message = %q, want %q", ce.UserMessage(), tt.wantErrMsg)
				}
				return
			}

			switch want := tt.wantPayload.(type) {
			case ChunkedPayload:
				got, ok := payload.(ChunkedPayload)
				if !ok {
					t.Fatalf("Interpret() payload = %T, want ChunkedPayload", payload)
				}
				if len(got.Chunks) != len(want.Chunks) {
					t.Fatalf("Interpret() chunks = %v, want %v", got.Chunks, want.Chunks)
				}
				for i := range want.Chunks {
					if got.Chunks[i] != want.Chunks[i] {
						t.Errorf("Interpret() chunk[%d] = %q, want %q", i, got.Chunks[i], want.Chunks[i])
					}
				}
				if got.ChunkDelay != want.ChunkDelay {
					t.Errorf("Interpret() chunk delay = %v, want %v", got.ChunkDelay, want.ChunkDelay)
				}
			case AtomicPayload:
				got, ok := payload.(AtomicPayload)
				if !ok {
					t.Fatalf("Interpret() payload = %T, want AtomicPayload", payload)
				}
				if got != want {
					t.Errorf("Interpret() payload = %+v, want %+v", got, want)
				}
			}
		})
	}
}

func TestInterpretBody(t *testing.T) {
	payload, err := InterpretBody([]byte(`{"code":200,"message":"success","data":{"answer":"hi","timestamp":42}}`))
	if err != nil {
		t.Fatalf("InterpretBody() error = %v", err)
	}
	atomic, ok := payload.(AtomicPayload)
	if !ok {
		t.Fatalf("InterpretBody() payload = %T, want AtomicPayload", payload)
	}
	if atomic.Answer != "hi" || atomic.Timestamp != 42 {
		t.Errorf("InterpretBody() payload = %+v", atomic)
	}
}

func TestInterpretBodyInvalidJSON(t *testing.T) {
	_, err := InterpretBody([]byte("not json"))
	if err == nil {
		t.Fatal("InterpretBody() expected error for invalid JSON")
	}
	if KindOf(err) != KindMalformed {
		t.Errorf("InterpretBody() error kind = %v, want %v", KindOf(err), KindMalformed)
	}
}
