package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"agentverse/pkg/logging"
)

// apiPrefix is the versioned path prefix every REST call is mounted under.
const apiPrefix = "/api/v1"

// DefaultTimeout is the per-request timeout applied when none is configured.
const DefaultTimeout = 30 * time.Second

// Client is the HTTP client for the agentverse backend. It attaches JSON
// headers, applies per-request timeouts, extracts structured validation
// errors from failure envelopes, and logs request/response metadata.
//
// Domain access goes through the typed service fields (Groups, Chat, ...);
// the raw verbs are unexported so every call shares one request path.
type Client struct {
	baseURL  string
	timeout  time.Duration
	maxTries uint

	httpClient *http.Client
	// streamClient has no client-level timeout so long-lived SSE responses
	// are not killed mid-stream. Cancellation happens via request context.
	streamClient *http.Client

	mu       sync.Mutex
	inflight map[string]inflightRequest

	Groups     *GroupsService
	Chat       *ChatService
	Agents     *AgentsService
	Tools      *ToolsService
	MCP        *MCPService
	Settings   *SettingsService
	Validation *ValidationService
	Logs       *LogsService
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry enables retrying failed requests up to maxTries attempts with
// exponential backoff. 4xx responses are never retried.
func WithRetry(maxTries uint) ClientOption {
	return func(c *Client) {
		c.maxTries = maxTries
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		timeout:      DefaultTimeout,
		maxTries:     1,
		httpClient:   &http.Client{},
		streamClient: &http.Client{},
		inflight:     make(map[string]inflightRequest),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Groups = &GroupsService{client: c}
	c.Chat = &ChatService{client: c}
	c.Agents = &AgentsService{client: c}
	c.Tools = &ToolsService{client: c}
	c.MCP = &MCPService{client: c}
	c.Settings = &SettingsService{client: c}
	c.Validation = &ValidationService{client: c}
	c.Logs = &LogsService{client: c}

	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// inflightRequest is one registry entry. The owner id ties the entry to the
// request that created it, so a superseded request cannot unregister its
// replacement on the way out.
type inflightRequest struct {
	owner  string
	cancel context.CancelFunc
}

// CancelRequest cancels the in-flight request registered under tag.
// Returns false if no such request is pending.
func (c *Client) CancelRequest(tag string) bool {
	c.mu.Lock()
	req, ok := c.inflight[tag]
	delete(c.inflight, tag)
	c.mu.Unlock()
	if ok {
		req.cancel()
	}
	return ok
}

// CancelAllRequests cancels every tagged in-flight request.
func (c *Client) CancelAllRequests() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.inflight))
	for tag, req := range c.inflight {
		cancels = append(cancels, req.cancel)
		delete(c.inflight, tag)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (c *Client) register(tag, owner string, cancel context.CancelFunc) {
	c.mu.Lock()
	if prev, ok := c.inflight[tag]; ok {
		// A tag identifies one logical request; a newer one supersedes it.
		prev.cancel()
	}
	c.inflight[tag] = inflightRequest{owner: owner, cancel: cancel}
	c.mu.Unlock()
}

func (c *Client) unregister(tag, owner string) {
	c.mu.Lock()
	if cur, ok := c.inflight[tag]; ok && cur.owner == owner {
		delete(c.inflight, tag)
	}
	c.mu.Unlock()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doTagged(ctx, "", method, path, body, out)
}

// doTagged performs one JSON request. A non-empty tag registers the request
// in the cancel registry so callers can abort it by name.
func (c *Client) doTagged(ctx context.Context, tag, method, path string, body, out any) error {
	reqID := uuid.NewString()[:8]
	url := c.baseURL + apiPrefix + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	if tag != "" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		c.register(tag, reqID, cancel)
		defer c.unregister(tag, reqID)
		defer cancel()
	}

	attempt := func() ([]byte, error) {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(reqCtx, method, url, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		logging.Debug("API", "[%s] %s %s", reqID, method, path)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			logging.Debug("API", "[%s] transport error after %s: %v", reqID, time.Since(start).Round(time.Millisecond), err)
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		logging.Debug("API", "[%s] %s %s -> %d (%s, %d bytes)",
			reqID, method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), len(data))

		if resp.StatusCode >= 400 {
			apiErr := parseAPIError(resp.StatusCode, data)
			if resp.StatusCode < 500 {
				// Client errors won't heal on retry.
				return nil, backoff.Permanent(apiErr)
			}
			return nil, apiErr
		}
		return data, nil
	}

	var data []byte
	var err error
	if c.maxTries > 1 {
		data, err = backoff.Retry(ctx, attempt,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(c.maxTries),
		)
	} else {
		data, err = attempt()
	}
	if err != nil {
		logging.Error("API", err, "[%s] %s %s failed", reqID, method, path)
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

// openStream opens a long-lived SSE response for path. The caller owns the
// returned body and must close it; cancelling ctx also terminates the stream.
func (c *Client) openStream(ctx context.Context, path string) (io.ReadCloser, error) {
	url := c.baseURL + apiPrefix + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, parseAPIError(resp.StatusCode, data)
	}
	return resp.Body, nil
}
