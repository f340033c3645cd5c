package auth

import (
	"net/http"

	"github.com/cameronmore/go-apiauth/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome is the terminal state of a gate decision.
type Outcome int

const (
	Allowed Outcome = iota
	Unauthorized
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is what the gate concluded about a single request.
type Decision struct {
	Outcome Outcome
	User    *sessions.User
}

// Gate is the enforcement point in front of every protected handler.
type Gate struct {
	auth     Authenticator
	excluded []string
	tracer   trace.Tracer
	outcomes *prometheus.CounterVec
}

// GateOption configures a Gate.
type GateOption func(*gateConfig)

type gateConfig struct {
	registry prometheus.Registerer
	tracer   trace.Tracer
}

// WithRegistry sets where the gate registers its decision counter. Without it
// the counter lives in a private registry and is not exported.
func WithRegistry(registry prometheus.Registerer) GateOption {
	return func(c *gateConfig) {
		c.registry = registry
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) GateOption {
	return func(c *gateConfig) {
		c.tracer = tracer
	}
}

// NewGate returns a gate over a. A nil authenticator disables authentication
// and every request is allowed.
func NewGate(a Authenticator, excluded []string, opts ...GateOption) *Gate {
	var cfg gateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer("github.com/cameronmore/go-apiauth/auth")
	}

	factory := promauto.With(cfg.registry)
	return &Gate{
		auth:     a,
		excluded: append([]string(nil), excluded...),
		tracer:   cfg.tracer,
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apiauth",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Authentication decisions by strategy and outcome",
		}, []string{"strategy", "outcome"}),
	}
}

// Authenticator returns the active authenticator, or nil when disabled.
func (g *Gate) Authenticator() Authenticator {
	return g.auth
}

// Decide runs the gate's state machine for r without writing a response.
func (g *Gate) Decide(r *http.Request) Decision {
	if g.auth == nil {
		return Decision{Outcome: Allowed}
	}

	if !g.auth.RequireAuth(r.URL.Path, g.excluded) {
		return Decision{Outcome: Allowed, User: g.auth.CurrentUser(r)}
	}

	if !g.credentialsPresented(r) {
		return Decision{Outcome: Unauthorized}
	}

	u := g.auth.CurrentUser(r)
	if u == nil {
		return Decision{Outcome: Forbidden}
	}
	return Decision{Outcome: Allowed, User: u}
}

// credentialsPresented reports whether the request attempted to authenticate.
// An empty header or cookie still counts as an attempt.
func (g *Gate) credentialsPresented(r *http.Request) bool {
	if p, ok := g.auth.(interface{ presented(*http.Request) bool }); ok {
		return p.presented(r)
	}
	return g.auth.AuthorizationHeader(r) != "" || g.auth.SessionCookie(r) != ""
}

// Middleware rejects requests the gate does not allow and attaches the
// resolved user to the context of those it does.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := g.tracer.Start(r.Context(), "auth.gate",
			trace.WithAttributes(attribute.String("http.route", r.URL.Path)))
		defer span.End()
		r = r.WithContext(ctx)

		d := g.Decide(r)

		strategy := string(StrategyNone)
		if g.auth != nil {
			strategy = string(g.auth.Kind())
		}
		g.outcomes.WithLabelValues(strategy, d.Outcome.String()).Inc()
		span.SetAttributes(
			attribute.String("auth.strategy", strategy),
			attribute.String("auth.outcome", d.Outcome.String()),
		)

		switch d.Outcome {
		case Unauthorized:
			span.SetStatus(codes.Error, "unauthorized")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		case Forbidden:
			span.SetStatus(codes.Error, "forbidden")
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		if d.User != nil {
			r = r.WithContext(ContextWithUser(r.Context(), d.User))
		}
		next.ServeHTTP(w, r)
	})
}
