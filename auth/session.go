package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cameronmore/go-apiauth/sessions"
	"github.com/thejerf/abtime"
)

// cookieSessions is the behaviour the three session variants share. Each
// variant supplies its own store.
type cookieSessions struct {
	requestInspector
	dir      *Directory
	store    sessions.Store
	duration time.Duration
	clock    abtime.AbstractTime
	logger   *slog.Logger
}

func newCookieSessions(dir *Directory, store sessions.Store, duration time.Duration, cookies *sessions.CookieCodec, logger *slog.Logger) cookieSessions {
	if logger == nil {
		logger = slog.Default()
	}
	return cookieSessions{
		requestInspector: newRequestInspector(cookies),
		dir:              dir,
		store:            store,
		duration:         duration,
		clock:            abtime.NewRealTime(),
		logger:           logger,
	}
}

// CurrentUser resolves the session cookie to its owner. A missing, forged,
// unknown or expired session yields nil.
func (c *cookieSessions) CurrentUser(r *http.Request) *sessions.User {
	sessionId, ok := c.cookies.Read(r)
	if !ok {
		return nil
	}

	ctx := r.Context()
	userId, err := c.store.UserIdForSessionId(ctx, sessionId)
	if err != nil {
		if !errors.Is(err, sessions.ErrSessionNotFound) && !errors.Is(err, sessions.ErrInvalidArgument) {
			c.logger.Warn("session lookup failed", "error", err)
		}
		return nil
	}

	u, err := c.dir.FindByID(ctx, userId)
	if err != nil {
		if !errors.Is(err, sessions.ErrUserNotFound) {
			c.logger.Warn("session owner lookup failed", "user_id", userId, "error", err)
		}
		return nil
	}
	return u
}

func (c *cookieSessions) CreateSession(r *http.Request, userId string) (*http.Cookie, error) {
	sessionId, err := c.store.CreateSession(r.Context(), userId)
	if err != nil {
		return nil, err
	}
	issued := sessions.Session{Id: sessionId, UserId: userId, CreatedAt: c.clock.Now()}
	return c.cookies.Issue(sessionId, issued.ExpiresAt(c.duration)), nil
}

// DestroySession removes the request's session. It reports false when no
// session was active, including one that has already expired; an expired
// record is still removed from the store.
func (c *cookieSessions) DestroySession(r *http.Request) (bool, error) {
	sessionId, ok := c.cookies.Read(r)
	if !ok {
		return false, nil
	}

	ctx := r.Context()
	_, err := c.store.UserIdForSessionId(ctx, sessionId)
	active := err == nil
	if err != nil && !errors.Is(err, sessions.ErrSessionNotFound) && !errors.Is(err, sessions.ErrInvalidArgument) {
		return false, err
	}

	removed, err := c.store.DestroySession(ctx, sessionId)
	if err != nil {
		return false, err
	}
	return active && removed, nil
}

func (c *cookieSessions) ClearCookie() *http.Cookie {
	return c.cookies.Clear()
}

// SessionAuthenticator keeps sessions in process memory with no expiry.
type SessionAuthenticator struct {
	cookieSessions
}

func NewSessionAuthenticator(dir *Directory, store *sessions.MemoryStore, cookies *sessions.CookieCodec, logger *slog.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{cookieSessions: newCookieSessions(dir, store, 0, cookies, logger)}
}

func (s *SessionAuthenticator) Kind() Strategy {
	return StrategySession
}

// ExpiringSessionAuthenticator keeps sessions in memory and stops honouring
// them once the store's duration has passed.
type ExpiringSessionAuthenticator struct {
	cookieSessions
}

func NewExpiringSessionAuthenticator(dir *Directory, store *sessions.ExpiringStore, cookies *sessions.CookieCodec, logger *slog.Logger) *ExpiringSessionAuthenticator {
	return &ExpiringSessionAuthenticator{cookieSessions: newCookieSessions(dir, store, store.Duration(), cookies, logger)}
}

func (e *ExpiringSessionAuthenticator) Kind() Strategy {
	return StrategyExpiringSession
}

// PersistedSessionAuthenticator resolves sessions from durable records so they
// survive restarts.
type PersistedSessionAuthenticator struct {
	cookieSessions
}

func NewPersistedSessionAuthenticator(dir *Directory, store *sessions.PersistedStore, cookies *sessions.CookieCodec, logger *slog.Logger) *PersistedSessionAuthenticator {
	return &PersistedSessionAuthenticator{cookieSessions: newCookieSessions(dir, store, store.Duration(), cookies, logger)}
}

func (p *PersistedSessionAuthenticator) Kind() Strategy {
	return StrategyPersistedSession
}
