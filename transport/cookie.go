package transport

import (
	"net/http"
	"strings"
	"time"

	goToken "github.com/MrEthical07/goToken"
)

// Cookies maps token pairs to and from HTTP cookies, with the Authorization
// bearer header as a fallback source. Cookie max-age always matches the
// corresponding token lifetime so the browser and the token expire together.
type Cookies struct {
	cfg        goToken.CookieConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookies creates a cookie transport. TTLs should be the engine's access
// and refresh lifetimes.
func NewCookies(cfg goToken.CookieConfig, accessTTL, refreshTTL time.Duration) *Cookies {
	return &Cookies{
		cfg:        cfg,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Attach writes both tokens of the pair as http-only cookies.
func (c *Cookies) Attach(w http.ResponseWriter, pair *goToken.TokenPair) {
	if pair == nil {
		return
	}
	c.set(w, c.cfg.AccessName, pair.AccessToken, c.accessTTL)
	c.set(w, c.cfg.RefreshName, pair.RefreshToken, c.refreshTTL)
}

// ExtractAccess returns the access token from the request: cookie first,
// bearer header as fallback.
func (c *Cookies) ExtractAccess(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(c.cfg.AccessName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return BearerToken(r.Header.Get("Authorization"))
}

// ExtractRefresh returns the refresh token from the request: cookie first,
// bearer header as fallback.
func (c *Cookies) ExtractRefresh(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(c.cfg.RefreshName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return BearerToken(r.Header.Get("Authorization"))
}

// Clear expires both token cookies on the client.
func (c *Cookies) Clear(w http.ResponseWriter) {
	c.expire(w, c.cfg.AccessName)
	c.expire(w, c.cfg.RefreshName)
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		Domain:   c.cfg.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.sameSite(),
	})
}

func (c *Cookies) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     c.path(),
		Domain:   c.cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.sameSite(),
	})
}

func (c *Cookies) path() string {
	if c.cfg.Path == "" {
		return "/"
	}
	return c.cfg.Path
}

func (c *Cookies) sameSite() http.SameSite {
	if c.cfg.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return c.cfg.SameSite
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
