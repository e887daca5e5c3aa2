// Package paging slices collections into fixed-size pages and filters them.
package paging

import (
	"errors"
	"fmt"
	"strings"
)

// PageSize is the number of records on a page.
const PageSize = 10

// ErrInvalidPage is returned for a page number outside [1, TotalPages].
var ErrInvalidPage = errors.New("invalid page number")

// Page is one slice of a collection. Number is 1-based.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	Total      int
}

// Offset returns the 0-based position of the first item of the page in the collection.
func (p Page[T]) Offset() int {
	return (p.Number - 1) * PageSize
}

// TotalPages returns the number of pages for count records. An empty collection
// still has one (empty) page.
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}

	return (count + PageSize - 1) / PageSize
}

// Paginate returns page number of items. Out of range page numbers are rejected,
// not clamped.
func Paginate[T any](items []T, number int) (Page[T], error) {
	totalPages := TotalPages(len(items))

	if number < 1 || number > totalPages {
		return Page[T]{}, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidPage, number, totalPages)
	}

	start := (number - 1) * PageSize
	end := min(start+PageSize, len(items))

	return Page[T]{
		Items:      append([]T(nil), items[start:end]...),
		Number:     number,
		TotalPages: totalPages,
		Total:      len(items),
	}, nil
}

// MatchKeyword reports whether name contains keyword, ignoring case.
// The empty keyword matches everything.
func MatchKeyword(name, keyword string) bool {
	if keyword == "" {
		return true
	}

	return strings.Contains(strings.ToLower(name), strings.ToLower(keyword))
}

// FilterByKeyword returns the items whose name contains keyword, ignoring case.
func FilterByKeyword[T any](items []T, keyword string, name func(T) string) []T {
	return filter(items, func(item T) bool {
		return MatchKeyword(name(item), keyword)
	})
}

// FilterByOwner returns the items owned by ownerID. An empty ownerID returns all items.
func FilterByOwner[T any](items []T, ownerID string, owner func(T) string) []T {
	return filter(items, func(item T) bool {
		return ownerID == "" || owner(item) == ownerID
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))

	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}

	return out
}
