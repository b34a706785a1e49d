package visionmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClient calls a vision-capable model provider behind a single HTTP
// endpoint, retrying transient failures via go-retryablehttp. The
// provider is treated as opaque per spec.md §1: one JSON request in, one
// JSON reply out.
type HTTPClient struct {
	endpoint string
	apiKey   string
	http     *retryablehttp.Client
}

// NewHTTPClient builds a client against endpoint, authenticating with
// apiKey (read from the PROVIDER_API_KEY-style env var by callers in
// pkg/config). A nil logger keeps go-retryablehttp's own retry chatter
// out of normal operation.
func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	log.Printf("vision model client configured for endpoint %s", endpoint)

	return &HTTPClient{endpoint: endpoint, apiKey: apiKey, http: client}
}

// NewHTTPClientFromEnv reads PROVIDER_ENDPOINT/PROVIDER_API_KEY, mirroring
// the env-driven construction style used across the provider clients this
// module's config layer wires up.
func NewHTTPClientFromEnv() *HTTPClient {
	return NewHTTPClient(os.Getenv("PROVIDER_ENDPOINT"), os.Getenv("PROVIDER_API_KEY"))
}

type generateRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	FrameDataURL string `json:"frameDataUrl,omitempty"`
	MaxTokens    int    `json:"maxTokens"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Usage struct {
		PromptTokens     int `json:"promptTokens"`
		CompletionTokens int `json:"completionTokens"`
	} `json:"usage"`
}

// Generate implements Client. Cancellation of ctx aborts the underlying
// HTTP request, which go-retryablehttp propagates down to the socket.
func (c *HTTPClient) Generate(ctx context.Context, modelID, prompt, frameDataURL string, maxTokens int) (Reply, error) {
	body, err := json.Marshal(generateRequest{
		Model:        modelID,
		Prompt:       prompt,
		FrameDataURL: frameDataURL,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("%w: encoding request: %v", ErrUpstream, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Reply{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(data))
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Reply{}, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	return Reply{
		Text:             parsed.Text,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}

// ScreenTypeTimeout/DecisionTimeout are the per-phase call deadlines
// pkg/decision applies via context.WithTimeout before invoking Generate.
const (
	ScreenTypeTimeout = 30 * time.Second
	DecisionTimeout   = 60 * time.Second
)
