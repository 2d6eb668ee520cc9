// Package api is the plain-HTTP client for the platform backend. It does
// not authenticate by itself: every request carries the session cookie the
// bridge extracted from the browser flow, and a 401 response invalidates
// the local session through a hook instead of being retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/e0as/mobile-bridge/internal/cookies"
	"github.com/e0as/mobile-bridge/internal/log"
	"github.com/e0as/mobile-bridge/internal/profile"
)

// CookieProvider supplies the current session cookie. The session manager
// implements it with its in-memory cache plus on-demand extraction; the
// client only reads, never mutates session state through this interface.
type CookieProvider interface {
	SessionCookie(ctx context.Context) (cookies.Cookie, bool)
}

// Client talks to the platform backend with the session cookie attached
type Client struct {
	baseURL        string
	httpClient     *http.Client
	cookies        CookieProvider
	onUnauthorized func()
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUnauthorizedHook sets the callback fired on any 401 response so the
// session manager can clear local state without a network round-trip.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

// New creates a backend client. All requests share the given timeout;
// on timeout the call fails like any other network error.
func New(baseURL string, provider CookieProvider, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: timeout},
		cookies:        provider,
		onUnauthorized: func() {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authResponse is the backend's auth endpoint envelope
type authResponse struct {
	Success bool          `json:"success"`
	User    *profile.User `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// MyProfile fetches the authenticated user. A 401 means no session; a 200
// with an unsuccessful payload is ErrRejected, which callers treat as a
// corrupt or expired cookie rather than a simple absence.
func (c *Client) MyProfile(ctx context.Context) (*profile.User, error) {
	body, err := c.do(ctx, http.MethodGet, "/users/my-profile", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, ErrRejected
	}
	if err := resp.User.Validate(); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// CompleteProfile submits the full profile payload and returns the
// backend's replacement user object. The payload is the whole profile,
// never a partial patch.
func (c *Client) CompleteProfile(ctx context.Context, payload *profile.User) (*profile.User, error) {
	body, err := c.do(ctx, http.MethodPost, "/registration/complete-profile", nil, payload)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing complete-profile response: %w", err)
	}
	if !resp.Success || resp.User == nil {
		if resp.Error != "" {
			return nil, fmt.Errorf("profile completion failed: %s", resp.Error)
		}
		return nil, ErrRejected
	}
	return resp.User, nil
}

// Logout asks the backend to tear down the server-side session. Callers
// treat failure as non-fatal; local cleanup happens regardless.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/auth/logout", nil, nil)
	return err
}

// do performs one request with the session cookie attached and returns the
// raw response body. Non-2xx responses become *Error with the body
// preserved; a 401 additionally fires the unauthorized hook. Requests are
// never retried here.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	target, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cookie, ok := c.cookies.SessionCookie(ctx); ok {
		req.Header.Set("Cookie", cookie.Header())
	}

	return c.send(req)
}

// send executes a prepared request and applies the shared response policy
func (c *Client) send(req *http.Request) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		log.LogDebugWithFields("api", "Session rejected with 401, invalidating local state", map[string]any{
			"path": req.URL.Path,
		})
		c.onUnauthorized()
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{StatusCode: res.StatusCode, Body: string(body)}
	}
	return body, nil
}

// decodeList absorbs the backend's two list shapes: a bare JSON array or a
// { "data": [...] } envelope. Which one a given endpoint returns has
// changed over time, so both are accepted everywhere.
func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parsing list response: %w", err)
		}
		return list, nil
	}

	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("parsing list envelope: %w", err)
	}
	return env.Data, nil
}

// decodeObject absorbs a single object either bare or under a data key
func decodeObject[T any](raw []byte) (T, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parsing object response: %w", err)
	}
	return out, nil
}
