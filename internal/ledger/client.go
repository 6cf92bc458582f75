// Package ledger is the typed HTTP client for the remote expense-ledger
// service. All balance computation and persistence happens on the other side
// of this wire; the client only shapes requests and decodes responses.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mhartley/tally/internal/session"
)

// Client talks to one ledger service instance. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests use this).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a ledger client. Every response with an authorization-denied
// status routes through the session's forced-logout guard before the caller
// sees the error.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the session guard for callers that need the user id.
func (c *Client) Session() *session.Session { return c.session }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) patch(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, query, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.Debug("Ledger request", "method", method, "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "ledger service unreachable", cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Only an authenticated session can be force-logged-out; a denied
		// login attempt has no credential to clear.
		if _, ok := c.session.Token(); ok {
			c.session.ForceLogout()
		}
		return &Error{
			Kind:       KindAuthorization,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(resp.Body, "session expired or credential invalid"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindServer
		fallback := "ledger service error"
		// The service reports business-rule rejections (overdraft without
		// override, same-account transfer, currency mismatch) as 400/409
		// with its own message.
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict {
			kind = KindConflict
			fallback = "request rejected"
		}
		return &Error{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(resp.Body, fallback),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "malformed response", cause: err}
	}
	return nil
}

// serverMessage extracts the collaborator's error message when it sent one.
func serverMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return fallback
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fallback
}

// flexID decodes an id that the service may send as a JSON number or string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

func (f flexID) String() string { return string(f) }
