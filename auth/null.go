package auth

import (
	"net/http"

	"github.com/cameronmore/go-apiauth/sessions"
)

// NullAuthenticator applies the path policy but never authenticates anyone.
type NullAuthenticator struct {
	requestInspector
}

func NewNullAuthenticator(cookies *sessions.CookieCodec) *NullAuthenticator {
	return &NullAuthenticator{requestInspector: newRequestInspector(cookies)}
}

func (n *NullAuthenticator) CurrentUser(*http.Request) *sessions.User {
	return nil
}

func (n *NullAuthenticator) Kind() Strategy {
	return StrategyNull
}
