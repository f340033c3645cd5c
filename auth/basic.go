package auth

import (
	"log/slog"
	"net/http"

	"github.com/cameronmore/go-apiauth/credentials"
	"github.com/cameronmore/go-apiauth/sessions"
)

// BasicAuthenticator resolves the Authorization: Basic header against the user
// directory.
type BasicAuthenticator struct {
	requestInspector
	dir    *Directory
	logger *slog.Logger
}

func NewBasicAuthenticator(dir *Directory, cookies *sessions.CookieCodec, logger *slog.Logger) *BasicAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BasicAuthenticator{
		requestInspector: newRequestInspector(cookies),
		dir:              dir,
		logger:           logger,
	}
}

// CurrentUser returns the first user, in directory order, whose email matches
// and whose stored hash verifies the presented password.
func (b *BasicAuthenticator) CurrentUser(r *http.Request) *sessions.User {
	header := b.AuthorizationHeader(r)
	if header == "" {
		return nil
	}
	email, password, err := credentials.DecodeBasic(header)
	if err != nil {
		return nil
	}

	users, err := b.dir.FindByEmail(r.Context(), email)
	if err != nil {
		b.logger.Warn("basic auth user lookup failed", "error", err)
		return nil
	}
	for i := range users {
		if b.dir.VerifyPassword(&users[i], password) {
			return &users[i]
		}
	}
	return nil
}

func (b *BasicAuthenticator) Kind() Strategy {
	return StrategyBasic
}
