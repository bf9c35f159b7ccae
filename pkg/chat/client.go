package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TABmk/chatgpt-wrapper/pkg/debug"
	"github.com/TABmk/chatgpt-wrapper/pkg/observability"
)

// DefaultURL is the canonical chat completions endpoint.
const DefaultURL = "https://api.openai.com/v1/chat/completions"

// Config holds the settings a Client is built from.
type Config struct {
	// APIKey is sent as a Bearer token. Required.
	APIKey string

	// Org is sent as the OpenAI-Organization header when non-empty.
	Org string

	// URL overrides DefaultURL.
	URL string

	// Model is used for Prompt shorthand. Defaults to DefaultModel.
	Model Model

	// HTTPClient replaces the built-in transport. Proxy and Timeout are
	// ignored when it is set.
	HTTPClient *http.Client

	// Proxy is an http, https or socks5 proxy URL. Empty means the
	// environment's proxy settings.
	Proxy string

	// Timeout bounds buffered calls. Zero means no limit. Streams are never
	// subject to it.
	Timeout time.Duration

	// Metrics enables the Prometheus client metrics in pkg/observability.
	Metrics bool
}

// Client calls the chat completions endpoint. It is immutable after New and
// safe for concurrent use.
type Client struct {
	apiKey  string
	org     string
	url     string
	model   Model
	metrics bool

	httpClient   *http.Client
	streamClient *http.Client
}

// New creates a Client. It fails only when the API key is missing or the
// proxy setting cannot be used.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat: APIKey is required")
	}

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	buffered, streaming, err := newHTTPClients(cfg)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	return &Client{
		apiKey:       cfg.APIKey,
		org:          cfg.Org,
		url:          cfg.URL,
		model:        cfg.Model,
		metrics:      cfg.Metrics,
		httpClient:   buffered,
		streamClient: streaming,
	}, nil
}

// Model returns the default model used for Prompt shorthand.
func (c *Client) Model() Model { return c.model }

// URL returns the endpoint requests are posted to.
func (c *Client) URL() string { return c.url }

// Send performs a buffered chat completion.
//
// A *Request with Stream set to true is rejected with an error matching
// ErrInvalidStreamUsage and nothing is sent; use Stream for those.
func (c *Client) Send(ctx context.Context, content Content) (*Response, error) {
	req, err := c.normalize(content, false)
	if err != nil {
		return nil, err
	}
	if req.Streaming() {
		return nil, newInvalidStreamUsageError()
	}

	httpResp, err := c.dispatch(ctx, c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding chat completion: %w", err)
	}

	if c.metrics {
		observability.RecordUsage(string(req.Model), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	return &resp, nil
}

// Stream performs a streaming chat completion and returns the response body
// without reading it. The body carries server-sent events ("data: {...}"
// lines ending with "data: [DONE]"); the caller must drain or close it.
//
// Streaming is always requested, whatever the Stream field of a *Request
// says. The caller's Request is not modified.
func (c *Client) Stream(ctx context.Context, content Content) (io.ReadCloser, error) {
	req, err := c.normalize(content, true)
	if err != nil {
		return nil, err
	}
	req = forceStream(req)

	httpResp, err := c.dispatch(ctx, c.streamClient, req)
	if err != nil {
		return nil, err
	}

	if c.metrics {
		return observability.TrackStream(httpResp.Body), nil
	}
	return httpResp.Body, nil
}

// Close releases idle connections held by the built-in transport.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	if c.streamClient != c.httpClient {
		c.streamClient.CloseIdleConnections()
	}
	return nil
}

func (c *Client) normalize(content Content, stream bool) (*Request, error) {
	if content == nil {
		return nil, errors.New("chat: nil content")
	}
	req := content.resolve(c.model, stream)
	if req == nil {
		return nil, errors.New("chat: nil request")
	}
	return req, nil
}

// dispatch posts req and returns the response when the status is 2xx. Any
// other status is drained, closed and mapped to an *Error.
func (c *Client) dispatch(ctx context.Context, hc *http.Client, req *Request) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	c.setHeaders(httpReq)

	var traceID string
	if debug.Enabled("client") || debug.Enabled("http") {
		traceID = uuid.NewString()
		debug.Log("client", "dispatching chat completion",
			"trace_id", traceID,
			"url", c.url,
			"model", req.Model,
			"stream", req.Streaming(),
			"messages", len(req.Messages),
		)
		debug.Log("http", "request headers", "trace_id", traceID, "headers", debug.RedactHeaders(httpReq.Header))
		debug.Raw("http", string(body))
	}

	mode := "buffered"
	if req.Streaming() {
		mode = "stream"
	}

	start := time.Now()
	httpResp, err := hc.Do(httpReq)
	if err != nil {
		if c.metrics {
			observability.ObserveRequest(string(req.Model), mode, 0, time.Since(start))
		}
		return nil, err
	}
	if c.metrics {
		observability.ObserveRequest(string(req.Model), mode, httpResp.StatusCode, time.Since(start))
	}

	debug.Log("client", "chat completion response",
		"trace_id", traceID,
		"status", httpResp.StatusCode,
		"content_type", httpResp.Header.Get("Content-Type"),
		"duration", time.Since(start),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, mapHTTPError(httpResp)
	}

	return httpResp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.org != "" {
		req.Header.Set("OpenAI-Organization", c.org)
	}
}

// String describes the client without exposing the API key.
func (c *Client) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chat.Client{url=%s model=%s", c.url, c.model)
	if c.org != "" {
		fmt.Fprintf(&b, " org=%s", c.org)
	}
	b.WriteString("}")
	return b.String()
}
