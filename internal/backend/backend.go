// Package backend is the HTTP client for the chat completion service. It
// mirrors the service's envelope contract: every response carries an
// application-level code inside the body, which the chat package interprets
// independently of the HTTP status.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/minichat/minichat/internal/chat"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	// Endpoints of the chat service.
	chunkedEndpoint = "/api/chat/miniprogram"
	simpleEndpoint  = "/api/chat/simple"
	healthEndpoint  = "/api/health/network"
)

// Config defines the configuration interface for the backend client.
type Config interface {
	GetBaseURL() string
	GetToken() string
	GetUserID() string
	GetTimeout() time.Duration
}

// ChatRequest is the request body accepted by both chat endpoints. Either
// Prompt or Messages must be set; Messages takes precedence on the server.
type ChatRequest struct {
	Prompt   string         `json:"prompt,omitempty"`
	Messages []chat.Message `json:"messages,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	Timeout  float64        `json:"timeout,omitempty"` // seconds, server-side budget
}

// Client implements the chat.Service interface against the chat service.
type Client struct {
	config     Config
	httpClient *http.Client
	chunked    bool
	debug      bool
}

// NewClient creates a new backend client. By default it uses the simple
// (atomic) endpoint; enable the chunked endpoint with SetChunked.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.GetTimeout(),
		},
	}
}

// SetChunked selects the pre-chunked (typing effect) endpoint.
func (c *Client) SetChunked(enabled bool) {
	c.chunked = enabled
}

// SetDebug enables or disables debug output.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Send performs one chat round trip with the full projected history and
// returns the interpreted payload.
func (c *Client) Send(ctx context.Context, messages []chat.Message) (chat.Payload, error) {
	return c.post(ctx, ChatRequest{
		Messages: messages,
		UserID:   c.config.GetUserID(),
		Timeout:  c.config.GetTimeout().Seconds(),
	})
}

// SendPrompt performs a single-shot round trip without history.
func (c *Client) SendPrompt(ctx context.Context, prompt string) (chat.Payload, error) {
	return c.post(ctx, ChatRequest{
		Prompt:  prompt,
		UserID:  c.config.GetUserID(),
		Timeout: c.config.GetTimeout().Seconds(),
	})
}

func (c *Client) post(ctx context.Context, reqBody ChatRequest) (chat.Payload, error) {
	endpoint := simpleEndpoint
	if c.chunked {
		endpoint = chunkedEndpoint
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, chat.NewTransportError("error marshaling request", err)
	}

	if c.debug {
		fmt.Fprintf(os.Stderr, "POST %s%s\n", c.config.GetBaseURL(), endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GetBaseURL()+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, chat.NewTransportError("error creating request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.config.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, chat.NewTransportError("error sending request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, chat.NewTransportError("error reading response", err)
	}

	var env chat.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// The service always answers with an envelope; anything else is a
		// proxy or transport-level failure.
		if resp.StatusCode != http.StatusOK {
			return nil, chat.NewTransportError(fmt.Sprintf("unexpected status %d", resp.StatusCode), err)
		}
		return nil, chat.NewMalformedError("unexpected response from service")
	}

	return chat.Interpret(&env)
}

// HealthStatus is the result of a service connectivity check.
type HealthStatus struct {
	Code    int
	Message string
}

// Health checks connectivity between the service and its upstream model
// provider.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.GetBaseURL()+healthEndpoint, nil)
	if err != nil {
		return nil, chat.NewTransportError("error creating request", err)
	}
	if token := c.config.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, chat.NewTransportError("error sending request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, chat.NewTransportError("error reading response", err)
	}

	var env chat.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, chat.NewTransportError(fmt.Sprintf("unexpected status %d", resp.StatusCode), err)
	}

	return &HealthStatus{Code: env.Code, Message: env.Message}, nil
}
