package application

import "errors"

var (
	// ErrValidation marks input rejected before any request to the content API was made.
	ErrValidation = errors.New("validation failed")

	ErrInvalidPassphrase = errors.New("invalid passphrase")
)
