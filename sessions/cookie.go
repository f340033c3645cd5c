package sessions

import (
	"net/http"
	"time"
)

// DefaultCookieName is used when no session cookie name is configured.
const DefaultCookieName = "session_id"

// CookieCodec issues and reads the session cookie. When Secret is set, cookie
// values carry an HMAC of the session id and unsigned or tampered values are
// rejected on read.
type CookieCodec struct {
	Name   string
	Secret string
	Path   string
	Secure bool
}

func (c *CookieCodec) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c *CookieCodec) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// Issue builds the cookie carrying sessionId. A zero expires produces a
// browser-session cookie.
func (c *CookieCodec) Issue(sessionId string, expires time.Time) *http.Cookie {
	value := sessionId
	if c.Secret != "" {
		value = signSessionId(sessionId, c.Secret)
	}
	return &http.Cookie{
		Name:     c.name(),
		Value:    value,
		Path:     c.path(),
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Raw returns the cookie value exactly as presented, or "" if the request has
// no session cookie.
func (c *CookieCodec) Raw(r *http.Request) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Present reports whether the request carries the session cookie at all, even
// with an empty value.
func (c *CookieCodec) Present(r *http.Request) bool {
	if r == nil {
		return false
	}
	_, err := r.Cookie(c.name())
	return err == nil
}

// Read returns the session id carried by the request, verifying its signature
// when a secret is configured.
func (c *CookieCodec) Read(r *http.Request) (string, bool) {
	value := c.Raw(r)
	if value == "" {
		return "", false
	}
	if c.Secret == "" {
		return value, true
	}
	sessionId, err := VerifySessionId(value, c.Secret)
	if err != nil {
		return "", false
	}
	return sessionId, true
}

// Clear returns a cookie that removes the session cookie from the client.
func (c *CookieCodec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     c.path(),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
