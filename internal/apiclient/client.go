// Package apiclient talks to the attendance API: login, list logs, create
// user-ID mappings and delete log entries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crucial707/fpadmin/internal/metrics"
	"github.com/crucial707/fpadmin/internal/models"
)

const (
	pathLogin = "/api/login"
	pathLogs  = "/api/logs"
	pathMap   = "/api/map"

	// maxErrorBody caps how much of a failed response is kept in APIError.
	maxErrorBody = 200
)

var (
	// ErrInvalidCredentials is returned by Login when no token comes back.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when the API rejects the bearer token (401/403).
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response other than an auth rejection.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a bearer token. Any response carrying a
// non-empty "token" field counts as success; everything else, including
// network failures, is ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(models.Credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	start := time.Now()
	data, _, err := c.do(ctx, http.MethodPost, pathLogin, "", payload)
	if err != nil {
		c.record("login", "network_error", start)
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		c.record("login", "invalid_credentials", start)
		return "", ErrInvalidCredentials
	}
	c.record("login", "ok", start)
	return out.Token, nil
}

// ListLogs returns every log entry visible to the token.
func (c *Client) ListLogs(ctx context.Context, token string) ([]models.LogEntry, error) {
	start := time.Now()
	data, status, err := c.do(ctx, http.MethodGet, pathLogs, token, nil)
	if err := c.check("list_logs", start, status, data, err); err != nil {
		return nil, err
	}

	var rows []models.LogEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("list_logs: decode response: %w", err)
	}
	return rows, nil
}

// CreateMapping associates a device user ID with a display name.
func (c *Client) CreateMapping(ctx context.Context, token string, m models.Mapping) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	start := time.Now()
	data, status, err := c.do(ctx, http.MethodPost, pathMap, token, payload)
	return c.check("create_mapping", start, status, data, err)
}

// DeleteLog removes one log entry by record id.
func (c *Client) DeleteLog(ctx context.Context, token, recordID string) error {
	start := time.Now()
	data, status, err := c.do(ctx, http.MethodDelete, pathLogs+"/"+url.PathEscape(recordID), token, nil)
	return c.check("delete_log", start, status, data, err)
}

// check classifies a completed call and records it.
func (c *Client) check(op string, start time.Time, status int, body []byte, err error) error {
	switch {
	case err != nil:
		c.record(op, "network_error", start)
		return fmt.Errorf("%s: %w", op, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.record(op, "unauthorized", start)
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		c.record(op, "api_error", start)
		return &APIError{Op: op, Status: status, Body: truncate(apiMessage(body), maxErrorBody)}
	}
	c.record(op, "ok", start)
	return nil
}

func (c *Client) record(op, outcome string, start time.Time) {
	d := time.Since(start)
	metrics.RecordAPICall(op, outcome, d.Seconds())
	c.log.Debug("attendance api call", "op", op, "outcome", outcome, "duration_ms", d.Milliseconds())
}

// do performs one request and returns the raw body and status code.
func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// apiMessage prefers the "error" or "message" field of a JSON error body.
func apiMessage(body []byte) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
