package auth

import (
	"context"

	"github.com/cameronmore/go-apiauth/sessions"
)

type contextKey struct{}

// ContextWithUser returns a copy of ctx carrying u.
func ContextWithUser(ctx context.Context, u *sessions.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user the gate attached, or nil.
func UserFromContext(ctx context.Context) *sessions.User {
	u, _ := ctx.Value(contextKey{}).(*sessions.User)
	return u
}
