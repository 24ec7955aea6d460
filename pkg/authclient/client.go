// Package authclient is an HTTP client for the finance tracker API that
// keeps the caller logged in. A request rejected with 401 triggers one token
// refresh shared by every request that failed at the same time, and is then
// replayed once with the new access token.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "/api/v1/auth/login"
	refreshPath = "/api/v1/auth/refresh-token"
	logoutPath  = "/api/v1/auth/logout"
	profilePath = "/api/v1/users/me"
)

var (
	// ErrSessionExpired is returned when the refresh token was rejected. The
	// client has already dropped its credentials.
	ErrSessionExpired = errors.New("session expired")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// APIError is a non-2xx answer decoded from the API envelope.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Kind, e.Message)
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	UserName      string    `json:"user_name"`
	Email         *string   `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type authPayload struct {
	User   User `json:"user"`
	Tokens *struct {
		AccessToken string `json:"access_token"`
		SessionID   string `json:"session_id"`
	} `json:"tokens"`
	RequiresVerification bool `json:"requires_verification"`
}

type Option func(*Client)

// WithHTTPClient uses hc for every call. A cookie jar is added when hc has
// none, since the refresh token travels as a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithStore(store Store) Option {
	return func(c *Client) { c.store = store }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithOnLogout registers fn to run when a failed refresh ends the session.
func WithOnLogout(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

type Client struct {
	baseURL  string
	http     *http.Client
	store    Store
	log      *zap.Logger
	onLogout func()

	mu    sync.RWMutex
	creds *Credentials
	// generation changes whenever creds do, so a 401 can be traced to a
	// token that was already replaced.
	generation uint64

	refreshes singleflight.Group
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		store:   NewMemoryStore(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}

	return c, nil
}

type noRetryKey struct{}

// NoRetry marks requests made with ctx as not eligible for refresh and
// replay. Their 401 responses are returned as is.
func NoRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

// Credentials returns a copy of the current credentials, or nil.
func (c *Client) Credentials() *Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil {
		return nil
	}
	creds := *c.creds
	return &creds
}

// NewRequest builds a request against the API with body encoded as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req with the current access token. On a 401 it refreshes the
// tokens and replays req once. If the refresh fails the result is
// ErrSessionExpired.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	token, seen := c.snapshot()
	resp, err := c.send(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !retryable(req) {
		return resp, nil
	}
	discard(resp)

	ctx := context.WithoutCancel(req.Context())
	if err := c.refresh(ctx, seen); err != nil {
		return nil, err
	}

	replay := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		replay.Body = body
	}

	token, _ = c.snapshot()
	return c.send(replay, token)
}

// Login exchanges identifier and password for a session.
func (c *Client) Login(ctx context.Context, identifier, password string) (*User, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, loginPath, map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var payload authPayload
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}
	if payload.Tokens == nil {
		return nil, fmt.Errorf("login: no tokens issued")
	}

	c.setCredentials(ctx, &Credentials{
		AccessToken: payload.Tokens.AccessToken,
		SessionID:   payload.Tokens.SessionID,
	})
	return &payload.User, nil
}

// Logout revokes the current session on the server and forgets it locally.
// Local state is dropped even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.reset(ctx)

	req, err := c.NewRequest(ctx, http.MethodPost, logoutPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()

	return decode(resp, nil)
}

// Rehydrate restores stored credentials and confirms them by loading the
// profile. It is meant to run once at startup.
func (c *Client) Rehydrate(ctx context.Context) (*User, error) {
	creds, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if creds == nil {
		return nil, ErrNotLoggedIn
	}

	c.mu.Lock()
	c.creds = creds
	c.generation++
	c.mu.Unlock()

	return c.Profile(ctx)
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, profilePath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user User
	if err := decode(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) snapshot() (string, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil {
		return "", c.generation
	}
	return c.creds.AccessToken, c.generation
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return c.http.Do(out)
}

// refresh rotates the tokens unless the credentials already moved past
// generation seen. Concurrent callers share one rotation.
func (c *Client) refresh(ctx context.Context, seen uint64) error {
	_, err, shared := c.refreshes.Do("refresh", func() (any, error) {
		c.mu.RLock()
		current, live := c.generation, c.creds != nil
		c.mu.RUnlock()

		if current != seen {
			if !live {
				return nil, ErrSessionExpired
			}
			return nil, nil
		}
		return nil, c.rotate(ctx)
	})
	if shared {
		c.log.Debug("Joined in-flight token refresh")
	}
	return err
}

func (c *Client) rotate(ctx context.Context) error {
	req, err := c.NewRequest(ctx, http.MethodPost, refreshPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.expire(ctx)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	defer resp.Body.Close()

	var payload authPayload
	if err := decode(resp, &payload); err != nil {
		c.expire(ctx)
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if payload.Tokens == nil {
		c.expire(ctx)
		return ErrSessionExpired
	}

	c.setCredentials(ctx, &Credentials{
		AccessToken: payload.Tokens.AccessToken,
		SessionID:   payload.Tokens.SessionID,
	})
	c.log.Debug("Tokens refreshed", zap.String("session_id", payload.Tokens.SessionID))
	return nil
}

func (c *Client) setCredentials(ctx context.Context, creds *Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.generation++
	c.mu.Unlock()

	if err := c.store.Save(ctx, creds); err != nil {
		c.log.Warn("Failed to persist credentials", zap.Error(err))
	}
}

// reset drops the credentials and reports whether there were any.
func (c *Client) reset(ctx context.Context) bool {
	c.mu.Lock()
	wasLive := c.creds != nil
	c.creds = nil
	c.generation++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn("Failed to clear stored credentials", zap.Error(err))
	}
	return wasLive
}

func (c *Client) expire(ctx context.Context) {
	if c.reset(ctx) {
		c.log.Info("Session expired, logged out")
		if c.onLogout != nil {
			c.onLogout()
		}
	}
}

func retryable(req *http.Request) bool {
	if noRetry, _ := req.Context().Value(noRetryKey{}).(bool); noRetry {
		return false
	}
	path := req.URL.Path
	return !strings.HasSuffix(path, loginPath) && !strings.HasSuffix(path, refreshPath)
}

// bufferBody makes req replayable.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// decode reads the API envelope. Non-2xx answers become *APIError; dst may
// be nil.
func decode(resp *http.Response, dst any) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Kind: env.Kind, Message: env.Message}
	}
	if dst == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
