package domain

import "errors"

// ErrRecordNotFound is the store-level miss. Services translate it into the
// entity-specific errors below before it leaves the use case layer.
var ErrRecordNotFound = errors.New("record not found")

// ErrConflict is returned by stores for uniqueness violations and stale-version
// writes. During account opening it triggers number regeneration.
var ErrConflict = errors.New("conflicting write")

var ErrClientNotFound = errors.New("client not found")
var ErrAccountNotFound = errors.New("account not found")
var ErrAccountClosed = errors.New("account is closed")
var ErrInsufficientBalance = errors.New("insufficient balance")
var ErrInvalidArgument = errors.New("invalid argument")
