package server

import (
	"net/http"

	"github.com/cameronmore/go-apiauth/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter wires the middleware chain and the /api/v1 routes. The gate sits
// in front of every route and decides from the request path alone.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(middleware.StripSlashes)
	r.Use(s.gate.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if s.metricsPath != "" && s.gatherer != nil {
		r.Handle(s.metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	ac := s.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", ac.StatusHandler)
		r.Get("/stats", ac.StatsHandler)
		r.Get("/unauthorized", ac.UnauthorizedHandler)
		r.Get("/forbidden", ac.ForbiddenHandler)

		r.Post("/register", ac.RegisterHandler)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", ac.ListUsersHandler)
			r.Post("/", ac.RegisterHandler)
			r.Get("/{id}", ac.GetUserHandler)
			r.Put("/{id}", ac.UpdateUserHandler)
			r.Delete("/{id}", ac.DeleteUserHandler)
		})

		r.Post("/auth_session/login", ac.LoginHandler)
		r.Delete("/auth_session/logout", ac.LogoutHandler)
		r.Post("/sessions", ac.LoginHandler)
		r.Delete("/sessions", ac.LogoutHandler)

		r.Get("/profile", ac.ProfileHandler)

		r.Post("/reset_password", ac.ResetTokenHandler)
		r.Put("/reset_password", ac.UpdatePasswordHandler)
	})

	return r
}
