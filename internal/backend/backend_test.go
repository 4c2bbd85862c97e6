package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minichat/minichat/internal/chat"
)

type testConfig struct {
	baseURL string
	token   string
	userID  string
	timeout time.Duration
}

func (c *testConfig) GetBaseURL() string        { return c.baseURL }
func (c *testConfig) GetToken() string          { return c.token }
func (c *testConfig) GetUserID() string         { return c.userID }
func (c *testConfig) GetTimeout() time.Duration { return c.timeout }

func newTestClient(url string) *Client {
	return NewClient(&testConfig{baseURL: url, userID: "u-42", timeout: 5 * time.Second})
}

func TestSendAtomic(t *testing.T) {
	var gotReq ChatRequest
	var gotPath, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"message":"success","data":{"answer":"hello back","timestamp":1700000000000}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	payload, err := client.Send(context.Background(), []chat.Message{
		{Role: "user", Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/api/chat/simple" {
		t.Errorf("path = %q, want /api/chat/simple", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", gotContentType)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
	if gotReq.UserID != "u-42" {
		t.Errorf("request userId = %q, want u-42", gotReq.UserID)
	}

	atomic, ok := payload.(chat.AtomicPayload)
	if !ok {
		t.Fatalf("payload = %T, want AtomicPayload", payload)
	}
	if atomic.Answer != "hello back" || atomic.Timestamp != 1700000000000 {
		t.Errorf("payload = %+v", atomic)
	}
}

func TestSendChunked(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":200,"message":"success","data":{"chunks":["he","ll","o"],"total_chunks":3,"complete_answer":"hello","chunk_delay":50,"timestamp":1700000000}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetChunked(true)

	payload, err := client.Send(context.Background(), []chat.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/api/chat/miniprogram" {
		t.Errorf("path = %q, want /api/chat/miniprogram", gotPath)
	}

	chunked, ok := payload.(chat.ChunkedPayload)
	if !ok {
		t.Fatalf("payload = %T, want ChunkedPayload", payload)
	}
	if len(chunked.Chunks) != 3 || chunked.ChunkDelay != 50*time.Millisecond {
		t.Errorf("payload = %+v", chunked)
	}
}

func TestSendPrompt(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"code":200,"message":"success","data":{"answer":"ok","timestamp":1}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.SendPrompt(context.Background(), "one-shot"); err != nil {
		t.Fatalf("SendPrompt() error = %v", err)
	}
	if gotReq.Prompt != "one-shot" {
		t.Errorf("request prompt = %q, want one-shot", gotReq.Prompt)
	}
	if gotReq.Messages != nil {
		t.Errorf("request messages = %+v, want none", gotReq.Messages)
	}
}

func TestSendApplicationError(t *testing.T) {
	// HTTP 200 with a non-200 envelope code: the application layer failed
	// even though the transport succeeded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":500,"message":"error","data":{"error":"upstream timeout","timestamp":1700000000}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Send(context.Background(), []chat.Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("Send() expected application error")
	}

	var ce *chat.Error
	if !errors.As(err, &ce) {
		t.Fatalf("Send() error = %T, want *chat.Error", err)
	}
	if ce.Kind != chat.KindApplication {
		t.Errorf("error kind = %v, want %v", ce.Kind, chat.KindApplication)
	}
	if ce.UserMessage() != "upstream timeout" {
		t.Errorf("error message = %q, want %q", ce.UserMessage(), "upstream timeout")
	}
}

func TestSendNonEnvelopeResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Send(context.Background(), []chat.Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("Send() expected transport error")
	}
	if chat.KindOf(err) != chat.KindTransport {
		t.Errorf("error kind = %v, want %v", chat.KindOf(err), chat.KindTransport)
	}
}

func TestSendConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)
	_, err := client.Send(context.Background(), []chat.Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Fatal("Send() expected transport error")
	}
	if chat.KindOf(err) != chat.KindTransport {
		t.Errorf("error kind = %v, want %v", chat.KindOf(err), chat.KindTransport)
	}
}

func TestSendBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":200,"message":"success","data":{"answer":"ok","timestamp":1}}`))
	}))
	defer server.Close()

	client := NewClient(&testConfig{baseURL: server.URL, token: "secret", timeout: time.Second})
	if _, err := client.Send(context.Background(), []chat.Message{{Role: "user", Content: "x"}}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "healthy",
			body:     `{"code":200,"message":"network ok","data":{"timestamp":1700000000}}`,
			wantCode: 200,
			wantMsg:  "network ok",
		},
		{
			name:     "degraded",
			body:     `{"code":500,"message":"network timeout","data":{"timestamp":1700000000}}`,
			wantCode: 500,
			wantMsg:  "network timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			status, err := client.Health(context.Background())
			if err != nil {
				t.Fatalf("Health() error = %v", err)
			}
			if gotPath != "/api/health/network" {
				t.Errorf("path = %q, want /api/health/network", gotPath)
			}
			if status.Code != tt.wantCode || status.Message != tt.wantMsg {
				t.Errorf("Health() = %+v, want code %d message %q", status, tt.wantCode, tt.wantMsg)
			}
		})
	}
}
