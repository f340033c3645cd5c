package sessions

import (
	"context"
	"time"
)

// User is the principal the authentication layer resolves requests to. The
// core only reads it; the backing UserStore owns it.
type User struct {
	UserId         string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	ResetToken     string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName returns the most specific human-readable name the user has.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// Session maps an opaque session id to exactly one user until it is destroyed.
// Expiry is not stored; it is derived from CreatedAt and the owning store's
// duration each time the session is read.
type Session struct {
	Id        string    `json:"session_id"`
	UserId    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiresAt returns when the session stops resolving under duration d, or the
// zero time if d disables expiry.
func (s Session) ExpiresAt(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return s.CreatedAt.Add(d)
}

// Expired reports whether the session is past its lifetime at now. A session is
// still valid at exactly CreatedAt+d.
func (s Session) Expired(d time.Duration, now time.Time) bool {
	if d <= 0 {
		return false
	}
	return now.After(s.CreatedAt.Add(d))
}

// Store is the session lifecycle every session-based authenticator runs on.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateSession mints a fresh, unguessable session id for userId. It
	// returns ErrInvalidArgument for an empty or malformed user id.
	CreateSession(ctx context.Context, userId string) (string, error)

	// UserIdForSessionId resolves a session id. Missing and expired sessions
	// both return ErrSessionNotFound.
	UserIdForSessionId(ctx context.Context, sessionId string) (string, error)

	// DestroySession removes the session and reports whether anything was
	// removed. Destroying an unknown id is not an error.
	DestroySession(ctx context.Context, sessionId string) (bool, error)
}

// RecordStore is the durable side of persisted sessions.
type RecordStore interface {
	// SaveSession must fail with ErrSessionExists rather than overwrite.
	SaveSession(ctx context.Context, s Session) error
	LoadSessionById(ctx context.Context, id string) (Session, error)
	// DeleteSessionById returns ErrSessionNotFound when nothing was removed.
	DeleteSessionById(ctx context.Context, id string) error
}

// UserStore is the user persistence the directory delegates to.
type UserStore interface {
	SaveUser(ctx context.Context, u User) error
	UpdateUser(ctx context.Context, u User) error
	DeleteUserById(ctx context.Context, id string) error
	LoadUserByUserId(ctx context.Context, id string) (User, error)
	// LoadUsersByEmail returns every matching user in store order; an empty
	// slice means no match.
	LoadUsersByEmail(ctx context.Context, email string) ([]User, error)
	LoadUserByResetToken(ctx context.Context, token string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
}

// AuthStore is a backend that persists both users and session records.
type AuthStore interface {
	UserStore
	RecordStore
}
