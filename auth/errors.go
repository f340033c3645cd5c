package auth

import "errors"

var ErrEmailTaken = errors.New("email already registered")

var ErrInvalidResetToken = errors.New("the reset token is invalid")

var ErrUnknownStrategy = errors.New("unknown authentication strategy")

// ErrMissingStore is returned by New when a strategy is selected without the
// store it runs on.
var ErrMissingStore = errors.New("the selected strategy requires a store")
