package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an operation requires a logged in user.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrUnauthorized is returned when the logged in user lacks permission.
	ErrUnauthorized = errors.New("unauthorized")
)

// Authorize checks that user is logged in and holds role.
func Authorize(user User, role Role) error {
	if user.ID == "" {
		return ErrUnauthenticated
	}

	if user.Role != role {
		return fmt.Errorf("%w: %s requires role %s", ErrUnauthorized, user.Name, role)
	}

	return nil
}
