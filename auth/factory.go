package auth

import (
	"fmt"
	"log/slog"

	"github.com/cameronmore/go-apiauth/sessions"
)

// Deps are the collaborators New wires into the selected authenticator. Only
// the store matching the strategy needs to be set.
type Deps struct {
	Directory *Directory
	Cookies   *sessions.CookieCodec
	Logger    *slog.Logger

	Memory    *sessions.MemoryStore
	Expiring  *sessions.ExpiringStore
	Persisted *sessions.PersistedStore
}

// New builds the authenticator for strategy. StrategyNone returns a nil
// authenticator, which the gate treats as authentication disabled.
func New(strategy Strategy, deps Deps) (Authenticator, error) {
	switch strategy {
	case StrategyNone:
		return nil, nil
	case StrategyNull:
		return NewNullAuthenticator(deps.Cookies), nil
	}

	if deps.Directory == nil {
		return nil, fmt.Errorf("%s: user directory is required", strategy)
	}

	switch strategy {
	case StrategyBasic:
		return NewBasicAuthenticator(deps.Directory, deps.Cookies, deps.Logger), nil
	case StrategySession:
		if deps.Memory == nil {
			return nil, fmt.Errorf("%s: %w", strategy, ErrMissingStore)
		}
		return NewSessionAuthenticator(deps.Directory, deps.Memory, deps.Cookies, deps.Logger), nil
	case StrategyExpiringSession:
		if deps.Expiring == nil {
			return nil, fmt.Errorf("%s: %w", strategy, ErrMissingStore)
		}
		return NewExpiringSessionAuthenticator(deps.Directory, deps.Expiring, deps.Cookies, deps.Logger), nil
	case StrategyPersistedSession:
		if deps.Persisted == nil {
			return nil, fmt.Errorf("%s: %w", strategy, ErrMissingStore)
		}
		return NewPersistedSessionAuthenticator(deps.Directory, deps.Persisted, deps.Cookies, deps.Logger), nil
	default:
		return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
}
