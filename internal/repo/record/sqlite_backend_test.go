//go:build integration || all

package record_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/homecase-shop/internal/repo/record"
)

func setupSQLiteDatabase(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(SQLiteBackendConfig{
		DatabasePath: filepath.Join(t.TempDir(), "var", "shop.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestSQLiteBackend_ReadMissing(t *testing.T) {
	t.Parallel()

	backend, err := setupSQLiteDatabase(t).Backend(context.TODO(), "users")
	require.NoError(t, err)

	lines, exists, err := backend.ReadLines(context.TODO())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, lines)
}

func TestSQLiteBackend_WriteLines(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	db := setupSQLiteDatabase(t)

	users, err := db.Backend(ctx, "users")
	require.NoError(t, err)
	products, err := db.Backend(ctx, "products")
	require.NoError(t, err)

	require.NoError(t, users.WriteLines(ctx, []string{"u_1,admin", "u_2,alice"}))
	require.NoError(t, products.WriteLines(ctx, []string{"p_001,Laptop"}))
	require.NoError(t, users.WriteLines(ctx, []string{"u_2,alice"}))

	lines, exists, err := users.ReadLines(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"u_2,alice"}, lines)

	lines, _, err = products.ReadLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p_001,Laptop"}, lines)

	require.NoError(t, users.WriteLines(ctx, nil))

	lines, exists, err = users.ReadLines(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, lines)
}

func TestSQLiteBackend_Store(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	db := setupSQLiteDatabase(t)

	backend, err := db.Backend(ctx, "items")
	require.NoError(t, err)

	store, err := NewStore(ctx, "items", backend, itemCodec, WithSeed(SeedWhenMissing, func() ([]item, error) {
		return []item{{ID: "s1"}}, nil
	}))
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, item{ID: "s2", Tags: []string{"x"}}))

	reopened, err := NewStore(ctx, "items", backend, itemCodec, WithSeed(SeedWhenMissing, func() ([]item, error) {
		return []item{{ID: "unexpected"}}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids(reopened.All()))
}
