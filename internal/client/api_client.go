package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// TokenSource is the client's view of persisted session credentials
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(accessToken, refreshToken string)
	Clear()
}

// Metrics receives backend call and refresh outcomes
type Metrics interface {
	RecordBackendCall(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration)
	RecordTokenRefresh(ctx context.Context, outcome string)
}

// RequestOptions describes one backend call
type RequestOptions struct {
	RequiresAuth bool
	Method       string
	Body         interface{}
	Headers      map[string]string
}

// Options configures an APIClient
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	RefreshTimeout time.Duration
	// OnSessionExpired runs after a failed refresh has cleared all auth state
	OnSessionExpired func()
	Metrics          Metrics
}

// APIClient is the single egress point for backend calls
type APIClient struct {
	http             *resty.Client
	tokens           TokenSource
	refreshGroup     singleflight.Group
	refreshTimeout   time.Duration
	metrics          Metrics
	hookMu           sync.RWMutex
	onSessionExpired func()
}

const refreshEndpoint = "/auth/refresh"

// NewAPIClient creates a client for the backend at opts.BaseURL
func NewAPIClient(opts Options, tokens TokenSource) *APIClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	refreshTimeout := opts.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = timeout
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &APIClient{
		http:             httpClient,
		tokens:           tokens,
		refreshTimeout:   refreshTimeout,
		onSessionExpired: opts.OnSessionExpired,
		metrics:          opts.Metrics,
	}
}

// SetOnSessionExpired replaces the session-expired hook
func (c *APIClient) SetOnSessionExpired(fn func()) {
	c.hookMu.Lock()
	c.onSessionExpired = fn
	c.hookMu.Unlock()
}

// Request performs a backend call and decodes a JSON response into out (when non-nil).
// Failures are always returned as *APIError.
func (c *APIClient) Request(ctx context.Context, endpoint string, opts RequestOptions, out interface{}) error {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	var token string
	if opts.RequiresAuth {
		token = c.tokens.AccessToken()
	}

	status, body, err := c.send(ctx, endpoint, opts, token)
	if err != nil {
		return newNetworkError(err)
	}

	if status == http.StatusUnauthorized && opts.RequiresAuth {
		newToken, refreshErr := c.renewAccessToken(ctx, token)
		if refreshErr != nil {
			return refreshErr
		}

		// One retry only; its outcome is final
		status, body, err = c.send(ctx, endpoint, opts, newToken)
		if err != nil {
			return newNetworkError(err)
		}
	}

	if status < 200 || status >= 300 {
		apiErr := parseErrorResponse(status, body)
		slog.Debug("Backend request failed",
			"method", opts.Method,
			"endpoint", endpoint,
			"status_code", status,
			"kind", apiErr.Kind,
			"message", apiErr.Message)
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return newNetworkError(fmt.Errorf("failed to decode response from %s: %w", endpoint, err))
	}
	return nil
}

// send performs one HTTP exchange and returns the raw status and body
func (c *APIClient) send(ctx context.Context, endpoint string, opts RequestOptions, token string) (int, []byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(opts.Headers)

	if token != "" {
		req.SetAuthToken(token)
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	start := time.Now()
	resp, err := req.Execute(opts.Method, endpoint)
	duration := time.Since(start)

	if err != nil {
		slog.Warn("Backend request error",
			"method", opts.Method,
			"endpoint", endpoint,
			"error", err)
		c.recordCall(ctx, opts.Method, endpoint, 0, duration)
		return 0, nil, err
	}

	c.recordCall(ctx, opts.Method, endpoint, resp.StatusCode(), duration)
	return resp.StatusCode(), resp.Body(), nil
}

// renewAccessToken returns a usable access token after a 401, refreshing at most once
// for all concurrent callers. usedToken is the token the failed request carried.
func (c *APIClient) renewAccessToken(ctx context.Context, usedToken string) (string, error) {
	// Another caller already finished a refresh after our request was sent
	if current := c.tokens.AccessToken(); current != "" && current != usedToken {
		return current, nil
	}

	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail every waiter
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return c.refresh(refreshCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", newNetworkError(ctx.Err())
	}
}

// refresh exchanges the stored refresh token for a new access token.
// Any failure clears all auth state and fires the session-expired hook.
func (c *APIClient) refresh(ctx context.Context) (string, error) {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		slog.Info("No refresh token available, ending session")
		return "", c.expireSession(ctx, "missing_token")
	}

	slog.Debug("Refreshing access token")

	status, body, err := c.send(ctx, refreshEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"refreshToken": refreshToken},
	}, "")
	if err != nil || status < 200 || status >= 300 {
		slog.Warn("Token refresh failed", "status_code", status, "error", err)
		return "", c.expireSession(ctx, "rejected")
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		slog.Warn("Token refresh returned no access token", "error", err)
		return "", c.expireSession(ctx, "malformed")
	}

	if payload.RefreshToken == "" {
		payload.RefreshToken = refreshToken
	}
	c.tokens.SetTokens(payload.AccessToken, payload.RefreshToken)

	if c.metrics != nil {
		c.metrics.RecordTokenRefresh(ctx, "success")
	}
	slog.Info("Access token refreshed")
	return payload.AccessToken, nil
}

func (c *APIClient) expireSession(ctx context.Context, outcome string) error {
	c.tokens.Clear()
	if c.metrics != nil {
		c.metrics.RecordTokenRefresh(ctx, outcome)
	}
	c.hookMu.RLock()
	hook := c.onSessionExpired
	c.hookMu.RUnlock()
	if hook != nil {
		hook()
	}
	return newSessionExpiredError()
}

func (c *APIClient) recordCall(ctx context.Context, method, endpoint string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordBackendCall(ctx, method, endpoint, status, d)
	}
}
