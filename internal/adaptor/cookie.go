package adaptor

import (
	"net/http"
	"time"

	"finance-tracker/pkg/utils"
)

const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/api/v1/auth"
)

// refreshCookie carries the refresh token to the auth routes only.
type refreshCookie struct {
	secure   bool
	sameSite http.SameSite
	maxAge   int
}

func newRefreshCookie(config *utils.Config) refreshCookie {
	c := refreshCookie{
		sameSite: http.SameSiteLaxMode,
		maxAge:   int(config.JWT.RefreshTTL / time.Second),
	}
	if config.App.IsProduction() {
		c.secure = true
		c.sameSite = http.SameSiteStrictMode
	}
	return c
}

func (c refreshCookie) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     RefreshCookiePath,
		MaxAge:   c.maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func (c refreshCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

// read prefers the cookie over the body field.
func (c refreshCookie) read(r *http.Request, fromBody string) string {
	if cookie, err := r.Cookie(RefreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return fromBody
}
