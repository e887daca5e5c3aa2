package domain

import "errors"

// ErrInvalidInput is returned when user supplied values fail validation.
var ErrInvalidInput = errors.New("invalid input")
