package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/adaptor"
	"finance-tracker/internal/data/repository/repotest"
	"finance-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}

type authData struct {
	Tokens               *tokens `json:"tokens"`
	RequiresVerification bool    `json:"requires_verification"`
}

func testConfig() *utils.Config {
	return &utils.Config{
		App: utils.AppConfig{Env: "test", FrontendURL: "http://localhost:5173"},
		JWT: utils.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    168 * time.Hour,
		},
		Security: utils.SecurityConfig{
			BcryptCost:      bcrypt.MinCost,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
		},
		RateLimit: utils.RateLimitConfig{
			GeneralLimit:  1000,
			GeneralWindow: time.Minute,
			AuthLimit:     100,
			AuthWindow:    time.Minute,
			ResetLimit:    100,
			ResetWindow:   time.Minute,
		},
		CORS: utils.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestApp(t *testing.T, config *utils.Config) *App {
	t.Helper()
	repo, _ := repotest.New()
	return Wiring(repo, nil, nil, config, zap.NewNop())
}

type call struct {
	method string
	path   string
	body   any
	bearer string
	cookie string
	header map[string]string
}

func do(t *testing.T, app *App, c call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "wire-test")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: adaptor.RefreshCookieName, Value: c.cookie})
	}

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func refreshCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == adaptor.RefreshCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", adaptor.RefreshCookieName)
	return nil
}

func registerGuest(t *testing.T, app *App, userName string) (*tokens, *http.Cookie) {
	t.Helper()
	rec, env := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"name":      "Abebe Kebede",
		"user_name": userName,
		"password":  "Secret@123",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.Tokens)
	return data.Tokens, refreshCookieFrom(t, rec)
}

func TestRefreshRotationFlow(t *testing.T) {
	app := newTestApp(t, testConfig())

	first, cookie := registerGuest(t, app, "abebe")
	assert.Equal(t, first.RefreshToken, cookie.Value)
	assert.Equal(t, adaptor.RefreshCookiePath, cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((168 * time.Hour).Seconds()), cookie.MaxAge)

	rec, _ := do(t, app, call{method: http.MethodGet, path: "/api/v1/sessions", bearer: first.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/refresh-token", cookie: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated authData
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	require.NotNil(t, rotated.Tokens)
	assert.NotEqual(t, first.RefreshToken, rotated.Tokens.RefreshToken)
	assert.NotEqual(t, first.SessionID, rotated.Tokens.SessionID)
	assert.Equal(t, rotated.Tokens.RefreshToken, refreshCookieFrom(t, rec).Value)

	// the old refresh token is single use
	rec, env = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/refresh-token", cookie: cookie.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", env.Kind)
	assert.Equal(t, -1, refreshCookieFrom(t, rec).MaxAge)

	// and the access token bound to it is dead
	rec, env = do(t, app, call{method: http.MethodGet, path: "/api/v1/users/me", bearer: first.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_REVOKED", env.Kind)

	rec, _ = do(t, app, call{method: http.MethodGet, path: "/api/v1/users/me", bearer: rotated.Tokens.AccessToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshFromBody(t *testing.T) {
	app := newTestApp(t, testConfig())
	first, _ := registerGuest(t, app, "almaz")

	rec, _ := do(t, app, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/refresh-token",
		body:   map[string]string{"refresh_token": first.RefreshToken},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/refresh-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_CREDENTIAL", env.Kind)
}

func TestLogoutAll(t *testing.T) {
	app := newTestApp(t, testConfig())
	first, cookie := registerGuest(t, app, "tesfaye")

	rec, env := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"identifier": "tesfaye",
		"password":   "Secret@123",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var second authData
	require.NoError(t, json.Unmarshal(env.Data, &second))

	rec, _ = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/logout-all", bearer: second.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, refreshCookieFrom(t, rec).MaxAge)

	for _, access := range []string{first.AccessToken, second.Tokens.AccessToken} {
		rec, env = do(t, app, call{method: http.MethodGet, path: "/api/v1/sessions", bearer: access})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "SESSION_REVOKED", env.Kind)
	}

	rec, _ = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/refresh-token", cookie: cookie.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout without a live session still succeeds
	rec, _ = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/logout", cookie: cookie.Value})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRejectBadCredentials(t *testing.T) {
	app := newTestApp(t, testConfig())

	cases := []struct {
		name   string
		bearer string
		kind   string
	}{
		{"missing", "", "MISSING_CREDENTIAL"},
		{"garbage", "not-a-jwt", "INVALID_OR_EXPIRED_TOKEN"},
	}
	for _, path := range []string{"/api/v1/users/me", "/api/v1/sessions", "/api/v1/categories", "/api/v1/transactions"} {
		for _, tc := range cases {
			t.Run(path+"/"+tc.name, func(t *testing.T) {
				rec, env := do(t, app, call{method: http.MethodGet, path: path, bearer: tc.bearer})
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Equal(t, tc.kind, env.Kind)
			})
		}
	}
}

func TestEmailRegistrationRequiresVerification(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec, env := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"name":      "Sara Tadesse",
		"user_name": "sara",
		"email":     "sara@example.com",
		"password":  "Secret@123",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	var data authData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.RequiresVerification)
	assert.Nil(t, data.Tokens)

	rec, env = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"identifier": "sara@example.com",
		"password":   "Secret@123",
	}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "EMAIL_NOT_VERIFIED", env.Kind)
}

func TestFinanceRoutes(t *testing.T) {
	app := newTestApp(t, testConfig())
	tok, _ := registerGuest(t, app, "dawit")

	rec, env := do(t, app, call{method: http.MethodGet, path: "/api/v1/categories", bearer: tok.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.NotEmpty(t, categories)

	rec, _ = do(t, app, call{method: http.MethodPost, path: "/api/v1/transactions", bearer: tok.AccessToken, body: map[string]any{
		"category_id": categories[0].ID,
		"amount":      250.5,
		"type":        "expense",
		"date":        "2026-01-15",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = do(t, app, call{method: http.MethodDelete, path: "/api/v1/categories/" + categories[0].ID, bearer: tok.AccessToken})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	config := testConfig()
	config.RateLimit.AuthLimit = 2
	config.RateLimit.AuthWindow = 15 * time.Minute
	app := newTestApp(t, config)

	login := call{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"identifier": "nobody",
		"password":   "Secret@123",
	}}
	for i := 0; i < 2; i++ {
		rec, _ := do(t, app, login)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec, env := do(t, app, login)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", env.Kind)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// other routes are not charged to the auth limiter
	rec, _ = do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/logout"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit_IgnoresForwardedForFromClients(t *testing.T) {
	config := testConfig()
	config.RateLimit.AuthLimit = 2
	config.RateLimit.AuthWindow = 15 * time.Minute
	app := newTestApp(t, config)

	var codes []int
	for i := 0; i < 5; i++ {
		rec, _ := do(t, app, call{
			method: http.MethodPost,
			path:   "/api/v1/auth/login",
			body:   map[string]string{"identifier": "nobody", "password": "Secret@123"},
			header: map[string]string{
				"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i+1),
				"X-Real-IP":       fmt.Sprintf("203.0.113.%d", i+1),
			},
		})
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{404, 404, 429, 429, 429}, codes)
}

func TestAuthRateLimit_BehindTrustedProxy(t *testing.T) {
	config := testConfig()
	config.RateLimit.AuthLimit = 2
	config.RateLimit.AuthWindow = 15 * time.Minute
	// httptest requests come from 192.0.2.1
	proxies, err := utils.ParseTrustedProxies([]string{"192.0.2.1"})
	require.NoError(t, err)
	config.App.TrustedProxies = proxies
	app := newTestApp(t, config)

	login := func(forwarded string) int {
		rec, _ := do(t, app, call{
			method: http.MethodPost,
			path:   "/api/v1/auth/login",
			body:   map[string]string{"identifier": "nobody", "password": "Secret@123"},
			header: map[string]string{"X-Forwarded-For": forwarded},
		})
		return rec.Code
	}

	assert.Equal(t, http.StatusNotFound, login("198.51.100.1"))
	assert.Equal(t, http.StatusNotFound, login("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("198.51.100.1"))

	// a forged left-most hop does not move the client to a new bucket
	assert.Equal(t, http.StatusTooManyRequests, login("10.9.9.9, 198.51.100.1"))

	assert.Equal(t, http.StatusNotFound, login("198.51.100.2"))
}

func TestRefreshCookie_Production(t *testing.T) {
	config := testConfig()
	config.App.Env = "production"
	app := newTestApp(t, config)

	_, cookie := registerGuest(t, app, "production")
	assert.Equal(t, adaptor.RefreshCookiePath, cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((168 * time.Hour).Seconds()), cookie.MaxAge)

	rec, _ := do(t, app, call{method: http.MethodPost, path: "/api/v1/auth/logout", cookie: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := refreshCookieFrom(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Equal(t, adaptor.RefreshCookiePath, cleared.Path)
	assert.True(t, cleared.HttpOnly)
	assert.True(t, cleared.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cleared.SameSite)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, testConfig())
	registerGuest(t, app, "kebede")

	rec, env := do(t, app, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	app.Router.ServeHTTP(mrec, req)
	assert.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), "finance_tracker_auth_events_total")
}
