package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/camera"
	"github.com/nerrad567/gray-logic-eufy/internal/infrastructure/config"
)

// Cloud endpoints, relative to the base URL.
const (
	PathLogin = "passport/login"
)

const (
	// authHeader carries the session token on every authenticated request.
	authHeader = "x-auth-token"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 4 << 20

	// maxErrorBodySize bounds how much of an error body is kept in StatusError.
	maxErrorBodySize = 512

	// tokenExpirySkew renews the token slightly before the cloud expires it.
	tokenExpirySkew = time.Minute
)

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Client talks to the vendor cloud API.
type Client struct {
	baseURL    *url.URL
	email      string
	password   string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	userID    string

	logger Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for session events.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a cloud client. No request is made until Login or Request.
//
// Parameters:
//   - cfg: Cloud section of the configuration
//   - opts: Optional HTTP client and logger
//
// Returns:
//   - *Client: Client ready for use
//   - error: If the base URL is not absolute
func New(cfg config.CloudConfig, opts ...Option) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultCloudBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cloud: invalid base url %q", cfg.BaseURL)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    u,
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	AuthToken      string `json:"auth_token"`
	TokenExpiresAt int64  `json:"token_expires_at"`
	UserID         string `json:"user_id"`
}

// envelope is the wrapper around every cloud response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// Login authenticates with the configured credentials and stores the
// session token.
func (c *Client) Login(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodPost, PathLogin, loginRequest{Email: c.email, Password: c.password}, "")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: login: %w", ErrInvalidResponse, err)
	}
	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("%w: login data: %w", ErrInvalidResponse, err)
	}
	if data.AuthToken == "" {
		return fmt.Errorf("%w: login returned no token", ErrNotAuthenticated)
	}

	c.mu.Lock()
	c.token = data.AuthToken
	c.userID = data.UserID
	c.expiresAt = time.Time{}
	if data.TokenExpiresAt > 0 {
		c.expiresAt = time.Unix(data.TokenExpiresAt, 0)
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("cloud session established", "user_id", data.UserID)
	}
	return nil
}

// UserID returns the account identifier of the current session, or "" before
// the first successful login.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Request sends payload as JSON to path and returns the raw response body.
// It logs in first when no valid session token is held.
//
// Returns:
//   - json.RawMessage: Full response envelope
//   - error: *StatusError, *APIError, or a transport error
func (c *Client) Request(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, method, path, payload, token)
	if IsAuthFailure(err) {
		// Force a fresh login on the next call.
		c.mu.Lock()
		if c.token == token {
			c.token = ""
		}
		c.mu.Unlock()
	}
	return body, err
}

// Devices returns every device on the account.
func (c *Client) Devices(ctx context.Context) ([]camera.Record, error) {
	body, err := c.Request(ctx, http.MethodPost, camera.PathDeviceList, struct{}{})
	if err != nil {
		return nil, err
	}
	return camera.ParseDeviceList(body)
}

// sessionToken returns a valid token, logging in if needed.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, expires := c.token, c.expiresAt
	c.mu.RUnlock()

	if token != "" && (expires.IsZero() || c.now().Add(tokenExpirySkew).Before(expires)) {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, nil
}

// do performs one HTTP exchange and validates the response envelope.
func (c *Client) do(ctx context.Context, method, path string, payload any, token string) (json.RawMessage, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("cloud: invalid path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("cloud: encoding %s payload: %w", path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(authHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cloud: reading %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		snippet = truncateUTF8(snippet, maxErrorBodySize)
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: snippet}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, path, err)
	}
	if env.Code != 0 {
		return nil, &APIError{Path: path, Code: env.Code, Message: env.Message}
	}

	if c.logger != nil {
		c.logger.Debug("cloud request complete", "method", method, "path", path, "status", resp.StatusCode)
	}
	return json.RawMessage(body), nil
}

// truncateUTF8 shortens s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
