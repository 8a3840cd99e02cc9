package models

import "errors"

// Domain errors shared by the store, the exercise engine and the transport
var (
	ErrNotFound          = errors.New("not found")
	ErrUserNotRegistered = errors.New("user not registered")
	ErrValidation        = errors.New("validation failed")
	ErrNotEnoughCards    = errors.New("not enough cards")
	ErrNothingDue        = errors.New("no cards due")
	ErrStore             = errors.New("store unavailable")
)
