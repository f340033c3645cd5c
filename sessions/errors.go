package sessions

import "errors"

var ErrSignedSessionIdIncorrectLength = errors.New("the signed session id is not the correct length")

var ErrInvalidSessionSignature = errors.New("the signed session id had an invalid signature")

var ErrUserNotFound = errors.New("the user was not found with that email or id")

var ErrUserExists = errors.New("a user with that email already exists")

var ErrSessionNotFound = errors.New("the session was not found")

var ErrSessionExists = errors.New("a session with that id already exists")

var ErrSessionIdCollision = errors.New("could not mint an unused session id")

// ErrInvalidArgument marks a missing or malformed user or session id passed to a
// store operation.
var ErrInvalidArgument = errors.New("invalid user or session id")
