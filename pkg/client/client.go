// Package client is a typed GraphQL client for the laptop catalog API with
// a normalized, goroutine-safe cache.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CodeNetwork is reported when the API could not be reached or answered garbage.
const CodeNetwork = "NETWORK_ERROR"

// Error is a failed operation. Code mirrors the API's extensions.code.
type Error struct {
	Message string
	Code    string
	Fields  []FieldError
}

// FieldError is a single violated constraint reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Client talks to a single GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
	cache    *normalizedCache
	refresh  singleflight.Group
	// refreshTimeout bounds background cache-and-network refreshes.
	refreshTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for background refresh failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCacheTTL sets how long cached entities and lists live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newNormalizedCache(ttl) }
}

// New creates a client for the GraphQL endpoint at endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:       endpoint,
		http:           &http.Client{Timeout: 15 * time.Second},
		logger:         zap.NewNop(),
		cache:          newNormalizedCache(5 * time.Minute),
		refreshTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query         string      `json:"query"`
	OperationName string      `json:"operationName,omitempty"`
	Variables     interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code   string       `json:"code"`
			Fields []FieldError `json:"fields"`
		} `json:"extensions"`
	} `json:"errors"`
}

// do posts one operation and decodes data into out. The first GraphQL error
// is returned as *Error.
func (c *Client) do(ctx context.Context, operation, document string, variables, out interface{}) error {
	body, err := json.Marshal(request{Query: document, OperationName: operation, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Message: "Failed to reach the laptop API", Code: CodeNetwork}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: "Failed to read the laptop API response", Code: CodeNetwork}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("laptop API returned an unexpected status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(raw))))
		return &Error{
			Message: fmt.Sprintf("Laptop API returned status %d", resp.StatusCode),
			Code:    CodeNetwork,
		}
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return &Error{Message: "Malformed laptop API response", Code: CodeNetwork}
	}
	if len(decoded.Errors) > 0 {
		first := decoded.Errors[0]
		return &Error{Message: first.Message, Code: first.Extensions.Code, Fields: first.Extensions.Fields}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
