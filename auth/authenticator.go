package auth

import (
	"net/http"
	"strings"

	"github.com/cameronmore/go-apiauth/sessions"
)

// Strategy names an authentication variant as it appears in configuration.
type Strategy string

const (
	StrategyNone             Strategy = "none"
	StrategyNull             Strategy = "null"
	StrategyBasic            Strategy = "basic"
	StrategySession          Strategy = "session"
	StrategyExpiringSession  Strategy = "expiring_session"
	StrategyPersistedSession Strategy = "persisted_session"
)

var strategyAliases = map[string]Strategy{
	"none":              StrategyNone,
	"":                  StrategyNone,
	"auth":              StrategyNull,
	"null":              StrategyNull,
	"basic_auth":        StrategyBasic,
	"basic":             StrategyBasic,
	"session_auth":      StrategySession,
	"session":           StrategySession,
	"session_exp_auth":  StrategyExpiringSession,
	"expiring_session":  StrategyExpiringSession,
	"session_db_auth":   StrategyPersistedSession,
	"persisted_session": StrategyPersistedSession,
}

// ParseStrategy maps a configured selector, in either its long or short form,
// to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	st, ok := strategyAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrUnknownStrategy
	}
	return st, nil
}

// Authenticator identifies the principal behind a request.
type Authenticator interface {
	// RequireAuth reports whether path is protected given the excluded list.
	RequireAuth(path string, excluded []string) bool

	// AuthorizationHeader returns the raw Authorization header, or "".
	AuthorizationHeader(r *http.Request) string

	// SessionCookie returns the raw session cookie value, or "".
	SessionCookie(r *http.Request) string

	// CurrentUser resolves the request to a user, or nil when no valid
	// credential was presented.
	CurrentUser(r *http.Request) *sessions.User

	Kind() Strategy
}

// SessionIssuer is implemented by the cookie-session authenticators.
type SessionIssuer interface {
	Authenticator

	// CreateSession mints a session for userId.
	CreateSession(r *http.Request, userId string) (*http.Cookie, error)

	// DestroySession ends the session carried by the request and reports
	// whether one was active.
	DestroySession(r *http.Request) (bool, error)

	// ClearCookie returns the cookie that removes the session from the client.
	ClearCookie() *http.Cookie
}

// RequireAuth is the path policy every authenticator applies. An empty path or
// an empty excluded list always requires authentication. A path is exempt when
// it equals an excluded entry, when either one is a prefix of the other, or when
// an entry ending in "*" has a stem that prefixes the path. Wildcard entries
// take part in the equality and prefix checks too.
func RequireAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	for _, ex := range excluded {
		if ex == "" {
			continue
		}
		if path == ex || strings.HasPrefix(path, ex) || strings.HasPrefix(ex, path) {
			return false
		}
		if stem, ok := strings.CutSuffix(ex, "*"); ok && strings.HasPrefix(path, stem) {
			return false
		}
	}
	return true
}

// requestInspector carries the request plumbing shared by every variant.
type requestInspector struct {
	cookies *sessions.CookieCodec
}

func newRequestInspector(cookies *sessions.CookieCodec) requestInspector {
	if cookies == nil {
		cookies = &sessions.CookieCodec{}
	}
	return requestInspector{cookies: cookies}
}

func (ri requestInspector) RequireAuth(path string, excluded []string) bool {
	return RequireAuth(path, excluded)
}

func (ri requestInspector) AuthorizationHeader(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.Header.Get("Authorization")
}

func (ri requestInspector) SessionCookie(r *http.Request) string {
	return ri.cookies.Raw(r)
}

// presented reports whether r carries an Authorization header or a session
// cookie, counting empty ones.
func (ri requestInspector) presented(r *http.Request) bool {
	if r == nil {
		return false
	}
	return len(r.Header.Values("Authorization")) > 0 || ri.cookies.Present(r)
}
