// Package rest implements resource.Client over a REST-ish JSON API with
// {root} collection and {root}/{id} item routes. Responses may be raw
// objects or {"data": ..., "status": ...} envelopes; both are accepted.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-resource/pkg/resource"
)

const defaultTimeout = 30 * time.Second

// Client talks to the backend resource API. It maps non-success responses
// onto resource.CommunicationError and field-keyed validation payloads onto
// resource.ValidationError; it never interprets them further.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Ensure the implementation satisfies the model's client contract.
var _ resource.Client = (*Client)(nil)

// Option configures the client during construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout sets the request timeout on the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New constructs a client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("rest: base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("rest: parse base url: %w", err)
	}
	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// NewFromConfig constructs a client from environment-derived configuration.
func NewFromConfig(cfg Config, options ...Option) (*Client, error) {
	base := []Option{WithToken(cfg.Token), WithTimeout(cfg.Timeout)}
	return New(cfg.BaseURL, append(base, options...)...)
}

// Create issues POST {root} and returns the backend representation.
func (c *Client) Create(ctx context.Context, root string, attrs map[string]any) (map[string]any, error) {
	return c.doObject(ctx, http.MethodPost, root, attrs)
}

// Update issues PUT {root}/{id} and returns the backend representation when
// the backend provides one.
func (c *Client) Update(ctx context.Context, root, id string, attrs map[string]any) (map[string]any, error) {
	return c.doObject(ctx, http.MethodPut, itemPath(root, id), attrs)
}

// Fetch issues GET {root}/{id}.
func (c *Client) Fetch(ctx context.Context, root, id string) (map[string]any, error) {
	return c.doObject(ctx, http.MethodGet, itemPath(root, id), nil)
}

// Delete issues DELETE {root}/{id}.
func (c *Client) Delete(ctx context.Context, root, id string) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(root, id), nil, nil)
	return err
}

// List issues GET {root} with column filters as query parameters and
// returns the collection entries.
func (c *Client) List(ctx context.Context, root string, filters map[string]string) ([]map[string]any, error) {
	query := url.Values{}
	for key, value := range filters {
		if strings.TrimSpace(key) == "" {
			continue
		}
		query.Set(key, value)
	}
	body, err := c.do(ctx, http.MethodGet, root, query, nil)
	if err != nil {
		return nil, err
	}
	payload := unwrapEnvelope(body)
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("rest: expected a collection from %s", root)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (c *Client) doObject(ctx context.Context, method, path string, body map[string]any) (map[string]any, error) {
	raw, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	payload := unwrapEnvelope(raw)
	if payload == nil {
		return nil, nil
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rest: expected an object from %s %s", method, path)
	}
	return obj, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + normalizePath(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("rest: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("rest: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &resource.CommunicationError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &resource.CommunicationError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	if verr := decodeValidation(resp.StatusCode, data); verr != nil {
		return nil, verr
	}
	return nil, &resource.CommunicationError{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Err:        errors.New(statusMessage(data)),
	}
}

func itemPath(root, id string) string {
	return strings.TrimRight(root, "/") + "/" + url.PathEscape(id)
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

// unwrapEnvelope peels the {"data": ...} wrapper the backend puts around
// every payload; raw objects and arrays pass through untouched.
func unwrapEnvelope(raw []byte) any {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if obj, ok := payload.(map[string]any); ok {
		if data, ok := obj["data"]; ok {
			return data
		}
	}
	return payload
}

// statusMessage extracts a human-readable message from an error body,
// accepting the common "status"/"error"/"message" keys.
func statusMessage(raw []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"status", "error", "message"} {
			if msg, ok := obj[key].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "request rejected"
	}
	return trimmed
}
