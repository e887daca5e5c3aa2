package idgen

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrExhausted is returned when every identifier in the generator's range is taken.
var ErrExhausted = errors.New("identifier space exhausted")

// ErrInvalidRange is returned for a generator whose range cannot be formatted in its width.
var ErrInvalidRange = errors.New("invalid identifier range")

// maxRandomAttempts is the number of consecutive collisions tolerated before
// falling back to a linear scan of the range.
const maxRandomAttempts = 64

// Taken is the set of identifiers already in use.
type Taken interface {
	Has(id string) bool
}

// Generator produces identifiers of the form "<prefix>_<zero padded number>".
type Generator struct {
	Prefix string
	Width  int
	Min    uint64
	Max    uint64 // inclusive
}

//nolint:gochecknoglobals
var (
	// Users generates "u_" followed by 10 digits.
	Users = Generator{Prefix: "u", Width: 10, Min: 0, Max: 9_999_999_999}
	// Products generates "p_" followed by 10 digits.
	Products = Generator{Prefix: "p", Width: 10, Min: 0, Max: 9_999_999_999}
	// Orders generates "o_" followed by 5 digits.
	Orders = Generator{Prefix: "o", Width: 5, Min: 10_000, Max: 99_999}
)

// Format renders n as an identifier of this generator.
func (g Generator) Format(n uint64) string {
	return fmt.Sprintf("%s_%0*d", g.Prefix, g.Width, n)
}

// Size returns the number of identifiers in the range.
func (g Generator) Size() uint64 {
	return g.Max - g.Min + 1
}

// Next returns a random identifier that is not in taken.
//
//nolint:gosec
func (g Generator) Next(taken Taken) (string, error) {
	if err := g.validate(); err != nil {
		return "", err
	}

	size := g.Size()

	for range maxRandomAttempts {
		id := g.Format(g.Min + rand.Uint64N(size))
		if !taken.Has(id) {
			return id, nil
		}
	}

	// The range is nearly full. Walk it once from a random offset.
	start := rand.Uint64N(size)
	for i := range size {
		id := g.Format(g.Min + (start+i)%size)
		if !taken.Has(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %s_ (%d ids)", ErrExhausted, g.Prefix, size)
}

func (g Generator) validate() error {
	if g.Prefix == "" || g.Width <= 0 || g.Max < g.Min || g.Max-g.Min == ^uint64(0) {
		return fmt.Errorf("%w: %+v", ErrInvalidRange, g)
	}

	if len(fmt.Sprint(g.Max)) > g.Width {
		return fmt.Errorf("%w: %d does not fit %d digits", ErrInvalidRange, g.Max, g.Width)
	}

	return nil
}

// TakenFunc adapts a function to Taken.
type TakenFunc func(id string) bool

// Has implements Taken.
func (f TakenFunc) Has(id string) bool {
	return f(id)
}

// Set is a plain identifier set.
type Set map[string]struct{}

// Has implements Taken.
func (s Set) Has(id string) bool {
	_, ok := s[id]

	return ok
}

// Add inserts id into the set.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}
