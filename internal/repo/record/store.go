package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"
)

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when adding a record whose ID is already stored.
	ErrDuplicateID = errors.New("duplicate record id")
	// ErrIDChanged is returned when an update mutator changes the record ID.
	ErrIDChanged = errors.New("record id changed")
)

// SeedPolicy decides when a store is populated with its seed records.
type SeedPolicy int

const (
	// SeedWhenMissing seeds a store whose backend holds no data yet.
	SeedWhenMissing SeedPolicy = iota + 1
	// SeedWhenEmpty seeds a store that loaded no records, whether or not data existed.
	SeedWhenEmpty
)

// Option configures a Store.
type Option[T Record] func(*Store[T])

// WithSeed populates the store with the records returned by seed according to policy.
func WithSeed[T Record](policy SeedPolicy, seed func() ([]T, error)) Option[T] {
	return func(s *Store[T]) {
		s.seedPolicy = policy
		s.seed = seed
	}
}

// WithMetrics records store activity on m.
func WithMetrics[T Record](m *metrics.StoreMetrics) Option[T] {
	return func(s *Store[T]) {
		s.metrics = m
	}
}

// Store holds every record of one type in memory and rewrites its backend after
// each mutation. A mutation either updates memory and backend, or neither.
// Store is not safe for concurrent use.
type Store[T Record] struct {
	name    string
	backend Backend
	codec   Codec[T]
	log     logging.Logger
	metrics *metrics.StoreMetrics

	seedPolicy SeedPolicy
	seed       func() ([]T, error)

	records []T
	index   map[string]int
}

// NewStore creates a store named name on top of backend and loads it.
func NewStore[T Record](
	ctx context.Context,
	name string,
	backend Backend,
	codec Codec[T],
	opts ...Option[T],
) (*Store[T], error) {
	store := &Store[T]{
		name:    name,
		backend: backend,
		codec:   codec,
		log:     logging.GetLogger("repo.record.store").With(logging.Group("store", "name", name)),
		index:   make(map[string]int),
	}

	for _, opt := range opts {
		opt(store)
	}

	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	return store, nil
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.name
}

// Load replaces the in-memory records with the content of the backend. Lines that
// cannot be decoded and lines repeating an earlier ID are skipped.
func (s *Store[T]) Load(ctx context.Context) (err error) {
	var skipped int

	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "store load failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "store loaded", "records", len(s.records), "skipped", skipped)
		}
	}()

	lines, exists, err := s.backend.ReadLines(ctx)
	if err != nil {
		return fmt.Errorf("read lines: %w", err)
	}

	records := make([]T, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))

	for n, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := s.codec.DecodeLine(line)
		if err == nil {
			if _, dup := seen[rec.RecordID()]; dup {
				err = fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
			}
		}

		if err != nil {
			skipped++
			s.metrics.IncSkipped(s.name)
			s.log.WarnContext(ctx, "skipping line", "line", n+1, "error", err)

			continue
		}

		seen[rec.RecordID()] = struct{}{}
		records = append(records, rec)
	}

	s.replace(records)

	if s.needsSeed(exists) {
		if err := s.applySeed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	return nil
}

func (s *Store[T]) needsSeed(exists bool) bool {
	switch s.seedPolicy {
	case SeedWhenMissing:
		return !exists
	case SeedWhenEmpty:
		return len(s.records) == 0
	default:
		return false
	}
}

func (s *Store[T]) applySeed(ctx context.Context) error {
	if s.seed == nil {
		return nil
	}

	records, err := s.seed()
	if err != nil {
		return err
	}

	if err := s.commit(ctx, append(s.snapshot(), records...)); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "store seeded", "records", len(records))

	return nil
}

// Save rewrites the backend from the in-memory records.
func (s *Store[T]) Save(ctx context.Context) error {
	return s.commit(ctx, s.records)
}

// Add appends a copy of rec and persists the store.
func (s *Store[T]) Add(ctx context.Context, rec T) error {
	if s.Has(rec.RecordID()) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.RecordID())
	}

	return s.commit(ctx, append(s.snapshot(), clone(rec)))
}

// AddAll appends recs and persists the store once.
func (s *Store[T]) AddAll(ctx context.Context, recs []T) error {
	seen := make(map[string]struct{}, len(recs))

	for _, rec := range recs {
		id := rec.RecordID()
		if _, dup := seen[id]; dup || s.Has(id) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}

		seen[id] = struct{}{}
	}

	if len(recs) == 0 {
		return nil
	}

	next := s.snapshot()
	for _, rec := range recs {
		next = append(next, clone(rec))
	}

	return s.commit(ctx, next)
}

// Update applies mutate to a copy of the record with the given ID and persists the
// store. If mutate or the write fails the stored record is unchanged.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(rec *T) error) error {
	pos, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rec := clone(s.records[pos])
	if err := mutate(&rec); err != nil {
		return fmt.Errorf("mutate: %w", err)
	}

	if rec.RecordID() != id {
		return fmt.Errorf("%w: %s -> %s", ErrIDChanged, id, rec.RecordID())
	}

	next := s.snapshot()
	next[pos] = rec

	return s.commit(ctx, next)
}

// Remove deletes every record for which match returns true and returns how many were
// removed. Nothing is written if no record matches.
func (s *Store[T]) Remove(ctx context.Context, match func(T) bool) (int, error) {
	next := make([]T, 0, len(s.records))

	for _, rec := range s.records {
		if !match(rec) {
			next = append(next, rec)
		}
	}

	removed := len(s.records) - len(next)
	if removed == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}

	return removed, nil
}

// RemoveByID deletes the record with the given ID.
func (s *Store[T]) RemoveByID(ctx context.Context, id string) error {
	if !s.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	_, err := s.Remove(ctx, func(rec T) bool { return rec.RecordID() == id })

	return err
}

// DeleteAll removes every record.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	return s.commit(ctx, nil)
}

// All returns a copy of every record in insertion order. Callers may modify
// the returned records without affecting the store.
func (s *Store[T]) All() []T {
	out := make([]T, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, clone(rec))
	}

	return out
}

// Filter returns the records for which match returns true.
func (s *Store[T]) Filter(match func(T) bool) []T {
	var out []T

	for _, rec := range s.records {
		if match(rec) {
			out = append(out, clone(rec))
		}
	}

	return out
}

// Find returns the first record for which match returns true.
func (s *Store[T]) Find(match func(T) bool) (T, bool) {
	for _, rec := range s.records {
		if match(rec) {
			return clone(rec), true
		}
	}

	var zero T

	return zero, false
}

// Get returns the record with the given ID.
func (s *Store[T]) Get(id string) (T, bool) {
	pos, ok := s.index[id]
	if !ok {
		var zero T

		return zero, false
	}

	return clone(s.records[pos]), true
}

// Has reports whether a record with the given ID is stored. It implements idgen.Taken.
func (s *Store[T]) Has(id string) bool {
	_, ok := s.index[id]

	return ok
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	return len(s.records)
}

// NextID generates an identifier that is not used by any record of the store.
func (s *Store[T]) NextID(gen idgen.Generator) (string, error) {
	id, err := gen.Next(s)
	if err != nil {
		return "", fmt.Errorf("next id: %w", err)
	}

	return id, nil
}

// commit writes next to the backend and, only on success, makes it the in-memory state.
func (s *Store[T]) commit(ctx context.Context, next []T) (err error) {
	start := time.Now()

	defer func() {
		s.metrics.ObserveWrite(s.name, time.Since(start), err)

		if err != nil {
			s.log.ErrorContext(ctx, "store write failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "store written", "records", len(next))
		}
	}()

	lines := make([]string, 0, len(next))

	for _, rec := range next {
		line, err := s.codec.EncodeLine(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.RecordID(), err)
		}

		lines = append(lines, line)
	}

	if err := s.backend.WriteLines(ctx, lines); err != nil {
		return fmt.Errorf("write lines: %w", err)
	}

	s.replace(next)

	return nil
}

// snapshot returns a shallow copy of the record slice for building the next
// committed state. Records are shared with the current state and must not be
// mutated in place.
func (s *Store[T]) snapshot() []T {
	return append([]T(nil), s.records...)
}

func (s *Store[T]) replace(records []T) {
	index := make(map[string]int, len(records))
	for pos, rec := range records {
		index[rec.RecordID()] = pos
	}

	s.records = records
	s.index = index
	s.metrics.SetRecords(s.name, len(records))
}

// Close closes the backend.
func (s *Store[T]) Close() error {
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}

	return nil
}
