package record_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"

	. "github.com/mkrupp/homecase-shop/internal/repo/record"
)

var errBackendDown = errors.New("backend down")

const skippedMetric = `
# HELP shop_store_skipped_lines_total Lines skipped while loading a store.
# TYPE shop_store_skipped_lines_total counter
shop_store_skipped_lines_total{store="items"} %v
`

type item struct {
	ID   string
	Tags []string
}

func (i item) RecordID() string { return i.ID }

func (i item) Clone() item {
	i.Tags = append([]string(nil), i.Tags...)

	return i
}

var itemCodec = LineCodec[item]{
	Encode: func(i item) (string, error) {
		if strings.Contains(i.ID, ",") {
			return "", fmt.Errorf("comma in id %q", i.ID)
		}

		return strings.Join(append([]string{i.ID}, i.Tags...), ","), nil
	},
	Decode: func(line string) (item, error) {
		fields := strings.Split(line, ",")
		if fields[0] == "" || fields[0] == "bad" {
			return item{}, fmt.Errorf("malformed line %q", line)
		}

		return item{ID: fields[0], Tags: fields[1:]}, nil
	},
}

type memoryBackend struct {
	lines   []string
	exists  bool
	writes  int
	failing bool
}

func (b *memoryBackend) ReadLines(context.Context) ([]string, bool, error) {
	return append([]string(nil), b.lines...), b.exists, nil
}

func (b *memoryBackend) WriteLines(_ context.Context, lines []string) error {
	if b.failing {
		return errBackendDown
	}

	b.lines = append([]string(nil), lines...)
	b.exists = true
	b.writes++

	return nil
}

func (b *memoryBackend) Close() error { return nil }

func newItemStore(t *testing.T, backend *memoryBackend, opts ...Option[item]) *Store[item] {
	t.Helper()

	store, err := NewStore[item](context.TODO(), "items", backend, itemCodec, opts...)
	require.NoError(t, err)

	return store
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}

	return out
}

func TestStore_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		lines       []string
		wantIDs     []string
		wantSkipped float64
	}{
		{
			name:    "empty backend",
			lines:   nil,
			wantIDs: []string{},
		},
		{
			name:        "one malformed line among five valid lines",
			lines:       []string{"a,x", "b", "bad,line", "c", "d,y,z", "e"},
			wantIDs:     []string{"a", "b", "c", "d", "e"},
			wantSkipped: 1,
		},
		{
			name:    "blank lines are ignored",
			lines:   []string{"", "a", "   ", "b"},
			wantIDs: []string{"a", "b"},
		},
		{
			name:        "duplicate ids keep the first",
			lines:       []string{"a,first", "b", "a,second"},
			wantIDs:     []string{"a", "b"},
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := prometheus.NewRegistry()
			m := metrics.NewStoreMetrics(reg)

			store := newItemStore(t, &memoryBackend{lines: tt.lines, exists: true}, WithMetrics[item](m))

			assert.Equal(t, tt.wantIDs, ids(store.All()))
			assert.Equal(t, len(tt.wantIDs), store.Len())

			if tt.wantSkipped > 0 {
				want := fmt.Sprintf(skippedMetric, tt.wantSkipped)
				err := testutil.GatherAndCompare(reg, strings.NewReader(want), "shop_store_skipped_lines_total")
				assert.NoError(t, err)
			}

			if a, ok := store.Get("a"); ok && tt.name == "duplicate ids keep the first" {
				assert.Equal(t, []string{"first"}, a.Tags)
			}
		})
	}
}

func TestStore_Seed(t *testing.T) {
	t.Parallel()

	seed := func() ([]item, error) {
		return []item{{ID: "s1"}, {ID: "s2"}}, nil
	}

	tests := []struct {
		name    string
		backend *memoryBackend
		policy  SeedPolicy
		wantIDs []string
	}{
		{
			name:    "missing data is seeded when missing",
			backend: &memoryBackend{},
			policy:  SeedWhenMissing,
			wantIDs: []string{"s1", "s2"},
		},
		{
			name:    "existing empty data is kept when missing",
			backend: &memoryBackend{exists: true},
			policy:  SeedWhenMissing,
			wantIDs: []string{},
		},
		{
			name:    "existing empty data is seeded when empty",
			backend: &memoryBackend{exists: true},
			policy:  SeedWhenEmpty,
			wantIDs: []string{"s1", "s2"},
		},
		{
			name:    "only malformed data is seeded when empty",
			backend: &memoryBackend{exists: true, lines: []string{"bad"}},
			policy:  SeedWhenEmpty,
			wantIDs: []string{"s1", "s2"},
		},
		{
			name:    "populated data is not seeded",
			backend: &memoryBackend{exists: true, lines: []string{"a"}},
			policy:  SeedWhenEmpty,
			wantIDs: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newItemStore(t, tt.backend, WithSeed(tt.policy, seed))

			assert.Equal(t, tt.wantIDs, ids(store.All()))
		})
	}
}

func TestStore_SeedPersists(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{}
	newItemStore(t, backend, WithSeed(SeedWhenMissing, func() ([]item, error) {
		return []item{{ID: "s1", Tags: []string{"t"}}}, nil
	}))

	assert.True(t, backend.exists)
	assert.Equal(t, []string{"s1,t"}, backend.lines)
}

func TestStore_Mutations(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	backend := &memoryBackend{exists: true, lines: []string{"a,x", "b,y"}}
	store := newItemStore(t, backend)

	require.NoError(t, store.Add(ctx, item{ID: "c", Tags: []string{"z"}}))
	assert.Equal(t, []string{"a,x", "b,y", "c,z"}, backend.lines)

	err := store.Add(ctx, item{ID: "a"})
	require.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, store.Update(ctx, "b", func(i *item) error {
		i.Tags = append(i.Tags, "w")

		return nil
	}))
	assert.Equal(t, []string{"a,x", "b,y,w", "c,z"}, backend.lines)

	err = store.Update(ctx, "b", func(i *item) error {
		i.ID = "renamed"

		return nil
	})
	require.ErrorIs(t, err, ErrIDChanged)

	err = store.Update(ctx, "missing", func(*item) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	removed, err := store.Remove(ctx, func(i item) bool { return i.ID != "b" })
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"b,y,w"}, backend.lines)

	writes := backend.writes
	removed, err = store.Remove(ctx, func(item) bool { return false })
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, writes, backend.writes)

	require.ErrorIs(t, store.RemoveByID(ctx, "a"), ErrNotFound)
	require.NoError(t, store.RemoveByID(ctx, "b"))
	assert.Empty(t, backend.lines)
	assert.True(t, backend.exists)
}

func TestStore_FailedWriteLeavesMemoryUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	backend := &memoryBackend{exists: true, lines: []string{"a,x", "b,y"}}
	store := newItemStore(t, backend)
	backend.failing = true

	tests := []struct {
		name string
		op   func() error
	}{
		{name: "add", op: func() error { return store.Add(ctx, item{ID: "c"}) }},
		{name: "update", op: func() error {
			return store.Update(ctx, "a", func(i *item) error {
				i.Tags[0] = "changed"

				return nil
			})
		}},
		{name: "remove", op: func() error { return store.RemoveByID(ctx, "a") }},
		{name: "delete all", op: func() error { return store.DeleteAll(ctx) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.op(), errBackendDown)

			assert.Equal(t, []string{"a", "b"}, ids(store.All()))

			a, ok := store.Get("a")
			require.True(t, ok)
			assert.Equal(t, []string{"x"}, a.Tags)
		})
	}
}

func TestStore_EncodeErrorLeavesMemoryUnchanged(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{exists: true, lines: []string{"a"}}
	store := newItemStore(t, backend)

	err := store.Add(context.TODO(), item{ID: "x,y"})
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, ids(store.All()))
	assert.Equal(t, 0, backend.writes)
}

func TestStore_Queries(t *testing.T) {
	t.Parallel()

	store := newItemStore(t, &memoryBackend{exists: true, lines: []string{"a,red", "b,blue", "c,red"}})

	red := store.Filter(func(i item) bool { return i.Tags[0] == "red" })
	assert.Equal(t, []string{"a", "c"}, ids(red))

	found, ok := store.Find(func(i item) bool { return i.Tags[0] == "blue" })
	require.True(t, ok)
	assert.Equal(t, "b", found.ID)

	_, ok = store.Find(func(i item) bool { return i.Tags[0] == "green" })
	assert.False(t, ok)

	// returned records are copies
	found.Tags[0] = "changed"
	again, _ := store.Get("b")
	assert.Equal(t, "blue", again.Tags[0])

	assert.True(t, store.Has("a"))
	assert.False(t, store.Has("z"))
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	t.Parallel()

	store := newItemStore(t, &memoryBackend{exists: true, lines: []string{"a,red", "b,blue"}})

	tests := []struct {
		name string
		read func() []item
	}{
		{"all", store.All},
		{"filter", func() []item { return store.Filter(func(i item) bool { return i.ID == "a" }) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.read()
			require.NotEmpty(t, got)

			got[0].Tags[0] = "changed"

			a, ok := store.Get("a")
			require.True(t, ok)
			assert.Equal(t, []string{"red"}, a.Tags)
		})
	}
}

func TestStore_AddKeepsCopy(t *testing.T) {
	t.Parallel()

	store := newItemStore(t, &memoryBackend{exists: true})

	single := item{ID: "a", Tags: []string{"red"}}
	batch := []item{{ID: "b", Tags: []string{"blue"}}}

	require.NoError(t, store.Add(context.TODO(), single))
	require.NoError(t, store.AddAll(context.TODO(), batch))

	single.Tags[0] = "changed"
	batch[0].Tags[0] = "changed"

	a, _ := store.Get("a")
	b, _ := store.Get("b")
	assert.Equal(t, "red", a.Tags[0])
	assert.Equal(t, "blue", b.Tags[0])
}

func TestStore_NextID(t *testing.T) {
	t.Parallel()

	gen := idgen.Generator{Prefix: "i", Width: 1, Min: 0, Max: 2}
	store := newItemStore(t, &memoryBackend{exists: true, lines: []string{"i_0", "i_2"}})

	id, err := store.NextID(gen)
	require.NoError(t, err)
	assert.Equal(t, "i_1", id)

	require.NoError(t, store.Add(context.TODO(), item{ID: id}))

	_, err = store.NextID(gen)
	require.ErrorIs(t, err, idgen.ErrExhausted)
}

func TestStore_AddAll(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	backend := &memoryBackend{exists: true, lines: []string{"a"}}
	store := newItemStore(t, backend)

	require.NoError(t, store.AddAll(ctx, []item{{ID: "b"}, {ID: "c"}}))
	assert.Equal(t, []string{"a", "b", "c"}, backend.lines)
	assert.Equal(t, 1, backend.writes)

	require.ErrorIs(t, store.AddAll(ctx, []item{{ID: "d"}, {ID: "d"}}), ErrDuplicateID)
	require.ErrorIs(t, store.AddAll(ctx, []item{{ID: "e"}, {ID: "a"}}), ErrDuplicateID)
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.AddAll(ctx, nil))
	assert.Equal(t, 1, backend.writes)
}
