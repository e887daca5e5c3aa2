package record

import (
	"context"
)

// Backend persists the lines of one record store.
type Backend interface {
	// ReadLines returns every stored line in order.
	// exists is false if nothing has been stored yet, which is not an error.
	ReadLines(ctx context.Context) (lines []string, exists bool, err error)

	// WriteLines replaces the stored lines. Readers observe either the previous or
	// the new lines, never a mix.
	WriteLines(ctx context.Context, lines []string) error

	// Close releases any resources held by the backend.
	Close() error
}

// BackendFactory is a function that creates the Backend for the named store.
type BackendFactory func(ctx context.Context, name string) (Backend, error)
