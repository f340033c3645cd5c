package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cameronmore/go-apiauth/sessions"
	"github.com/go-chi/chi/v5"
)

// AuthContext bundles the directory and gate behind the API's handlers.
type AuthContext struct {
	Dir    *Directory
	Gate   *Gate
	Logger *slog.Logger
}

// NewAuthContext returns the handler set for dir and gate.
func NewAuthContext(dir *Directory, gate *Gate, logger *slog.Logger) *AuthContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthContext{
		Dir:    dir,
		Gate:   gate,
		Logger: logger,
	}
}

func (ac *AuthContext) issuer() (SessionIssuer, bool) {
	issuer, ok := ac.Gate.Authenticator().(SessionIssuer)
	return issuer, ok
}

// StatusHandler reports that the API is up.
func (ac *AuthContext) StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// StatsHandler returns the number of registered users.
func (ac *AuthContext) StatsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := ac.Dir.Count(r.Context())
	if err != nil {
		ac.Logger.Error("counting users", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"users": n})
}

func (ac *AuthContext) UnauthorizedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func (ac *AuthContext) ForbiddenHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusForbidden, "Forbidden")
}

// RegisterHandler creates a user from the email, password and optional
// first_name and last_name fields of a form or JSON body.
func (ac *AuthContext) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Wrong format")
		return
	}
	reg := Registration{
		Email:     values["email"],
		Password:  values["password"],
		FirstName: values["first_name"],
		LastName:  values["last_name"],
	}
	if reg.Email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	if reg.Password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	u, err := ac.Dir.Register(r.Context(), reg)
	if errors.Is(err, ErrEmailTaken) {
		writeError(w, http.StatusBadRequest, ErrEmailTaken.Error())
		return
	}
	if err != nil {
		ac.Logger.Error("registering user", "error", err)
		writeError(w, http.StatusInternalServerError, "Can't create User")
		return
	}

	ac.Logger.Info("user registered", "user_id", u.UserId)
	writeJSON(w, http.StatusCreated, u)
}

// ListUsersHandler returns every user.
func (ac *AuthContext) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := ac.Dir.List(r.Context())
	if err != nil {
		ac.Logger.Error("listing users", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if users == nil {
		users = []sessions.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserHandler returns the user named by {id}; "me" is the caller.
func (ac *AuthContext) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "me" {
		current := UserFromContext(r.Context())
		if current == nil {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, current)
		return
	}

	u, err := ac.Dir.FindByID(r.Context(), id)
	if !ac.userFound(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type userUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateUserHandler changes a user's first and last name from a JSON body.
// Fields left out of the body keep their current value.
func (ac *AuthContext) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := ac.Dir.FindByID(r.Context(), id)
	if !ac.userFound(w, err) {
		return
	}

	var body userUpdate
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Wrong format")
		return
	}
	first, last := u.FirstName, u.LastName
	if body.FirstName != nil {
		first = *body.FirstName
	}
	if body.LastName != nil {
		last = *body.LastName
	}

	u, err = ac.Dir.Update(r.Context(), id, first, last)
	if !ac.userFound(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteUserHandler removes the user named by {id}.
func (ac *AuthContext) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	err := ac.Dir.Delete(r.Context(), chi.URLParam(r, "id"))
	if !ac.userFound(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// LoginHandler starts a session from the email and password form fields and
// returns the user with the session cookie set.
func (ac *AuthContext) LoginHandler(w http.ResponseWriter, r *http.Request) {
	issuer, ok := ac.issuer()
	if !ok {
		writeError(w, http.StatusNotImplemented, "session authentication is not enabled")
		return
	}

	values, err := formValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Wrong format")
		return
	}
	email, password := values["email"], values["password"]
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	users, err := ac.Dir.FindByEmail(r.Context(), email)
	if err != nil {
		ac.Logger.Error("looking up user for login", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if len(users) == 0 {
		writeError(w, http.StatusNotFound, "no user found for this email")
		return
	}

	var u *sessions.User
	for i := range users {
		if ac.Dir.VerifyPassword(&users[i], password) {
			u = &users[i]
			break
		}
	}
	if u == nil {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	cookie, err := issuer.CreateSession(r, u.UserId)
	if err != nil {
		ac.Logger.Error("creating session", "user_id", u.UserId, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, u)
}

// LogoutHandler destroys the session the request carries.
func (ac *AuthContext) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	issuer, ok := ac.issuer()
	if !ok {
		writeError(w, http.StatusNotImplemented, "session authentication is not enabled")
		return
	}

	removed, err := issuer.DestroySession(r)
	if err != nil {
		ac.Logger.Error("destroying session", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	http.SetCookie(w, issuer.ClearCookie())
	writeJSON(w, http.StatusOK, struct{}{})
}

// ProfileHandler returns the caller's email.
func (ac *AuthContext) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	u := UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": u.Email})
}

// ResetTokenHandler issues a password reset token for the email form field.
func (ac *AuthContext) ResetTokenHandler(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Wrong format")
		return
	}
	email := values["email"]

	token, err := ac.Dir.ResetToken(r.Context(), email)
	if errors.Is(err, sessions.ErrUserNotFound) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err != nil {
		ac.Logger.Error("issuing reset token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "reset_token": token})
}

// UpdatePasswordHandler sets a new password from the email, reset_token and
// new_password form fields.
func (ac *AuthContext) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Wrong format")
		return
	}
	email := values["email"]

	_, err = ac.Dir.UpdatePassword(r.Context(), email, values["reset_token"], values["new_password"])
	if errors.Is(err, ErrInvalidResetToken) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err != nil {
		ac.Logger.Error("updating password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "Password updated"})
}

// userFound writes the response for a failed user lookup and reports whether
// the handler should continue.
func (ac *AuthContext) userFound(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, sessions.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		ac.Logger.Error("loading user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
	return false
}
