package errors

import (
	"errors"
)

// Common error types
var (
	ErrValidation = errors.New("invalid input")
	ErrNoTarget   = errors.New("target user not identified")
	ErrTransport  = errors.New("platform call failed")
)
