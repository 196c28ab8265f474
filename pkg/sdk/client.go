package prodsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to a prodsearch server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a prodsearch client for the given server base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("prodsearch: base URL required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Search runs the progressive fallback search for a free-text query.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchOutcome, error) {
	body, err := c.post(ctx, "/search", req)
	if err != nil {
		return nil, err
	}

	// The success flag discriminates the two response variants.
	var head struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("prodsearch: decode response: %w", err)
	}

	if head.Success {
		var resp struct {
			Results
			Debug *Debug `json:"debug"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("prodsearch: decode results: %w", err)
		}
		return &SearchOutcome{Results: &resp.Results, Debug: resp.Debug}, nil
	}

	var resp struct {
		Message      string `json:"message"`
		Alternatives struct {
			AvailableCategories []Taxonomy `json:"availableCategories"`
			Suggestions         []string   `json:"suggestions"`
			SearchTips          []string   `json:"searchTips"`
		} `json:"alternatives"`
		Debug *Debug `json:"debug"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("prodsearch: decode alternatives: %w", err)
	}
	return &SearchOutcome{
		Alternatives: &Alternatives{
			Message:             resp.Message,
			AvailableCategories: resp.Alternatives.AvailableCategories,
			Suggestions:         resp.Alternatives.Suggestions,
			SearchTips:          resp.Alternatives.SearchTips,
		},
		Debug: resp.Debug,
	}, nil
}

// AnalyzeIntent runs the standalone strict intent analysis for a query.
func (c *Client) AnalyzeIntent(ctx context.Context, query string) (Intent, error) {
	body, err := c.post(ctx, "/intent", map[string]string{"query": query})
	if err != nil {
		return Intent{}, err
	}

	var it Intent
	if err := json.Unmarshal(body, &it); err != nil {
		return Intent{}, fmt.Errorf("prodsearch: decode intent: %w", err)
	}
	return it, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("prodsearch: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("prodsearch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prodsearch: %s: %w", path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("prodsearch: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, buf.Bytes())
	}
	return buf.Bytes(), nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Suggestion string `json:"suggestion"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{Status: status, Code: CodeInternalError, Message: string(body)}
	}
	return &APIError{
		Status:     status,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
		Suggestion: envelope.Suggestion,
	}
}
