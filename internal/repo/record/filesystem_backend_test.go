package record_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-shop/internal/infra/metrics"

	. "github.com/mkrupp/homecase-shop/internal/repo/record"
)

func setupFileSystemBackend(t *testing.T) (*FileSystemBackend, string) {
	t.Helper()

	basedir := filepath.Join(t.TempDir(), "data")

	backend, err := NewFileSystemBackend(context.TODO(), "products", FileSystemBackendConfig{Basedir: basedir})
	require.NoError(t, err)

	return backend, basedir
}

func TestFileSystemBackend_ReadMissing(t *testing.T) {
	t.Parallel()

	backend, basedir := setupFileSystemBackend(t)

	lines, exists, err := backend.ReadLines(context.TODO())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, lines)
	assert.Equal(t, filepath.Join(basedir, "products.txt"), backend.Filename())
}

func TestFileSystemBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		file  string
	}{
		{name: "no lines", lines: nil, file: ""},
		{name: "single line", lines: []string{"p_001,Laptop,999.99,Electronics"}, file: "p_001,Laptop,999.99,Electronics\n"},
		{name: "several lines", lines: []string{"a", "b", "c"}, file: "a\nb\nc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend, _ := setupFileSystemBackend(t)
			ctx := context.TODO()

			require.NoError(t, backend.WriteLines(ctx, tt.lines))

			content, err := os.ReadFile(backend.Filename())
			require.NoError(t, err)
			assert.Equal(t, tt.file, string(content))

			lines, exists, err := backend.ReadLines(ctx)
			require.NoError(t, err)
			assert.True(t, exists)
			assert.Equal(t, len(tt.lines), len(lines))

			for i := range tt.lines {
				assert.Equal(t, tt.lines[i], lines[i])
			}
		})
	}
}

func TestFileSystemBackend_ReadsForeignLineEndings(t *testing.T) {
	t.Parallel()

	backend, _ := setupFileSystemBackend(t)
	require.NoError(t, os.WriteFile(backend.Filename(), []byte("a\nb"), 0o644))

	lines, exists, err := backend.ReadLines(context.TODO())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestFileSystemBackend_ReadsLongLines(t *testing.T) {
	t.Parallel()

	backend, _ := setupFileSystemBackend(t)
	long := strings.Repeat("x", 2<<20)
	require.NoError(t, os.WriteFile(backend.Filename(), []byte("a,1\r\n"+long+"\nb,2\n"), 0o644))

	lines, exists, err := backend.ReadLines(context.TODO())
	require.NoError(t, err)
	assert.True(t, exists)
	require.Len(t, lines, 3)
	assert.Equal(t, "a,1", lines[0])
	assert.Len(t, lines[1], len(long))
	assert.Equal(t, "b,2", lines[2])
}

func TestFileSystemBackend_LongMalformedLineIsSkipped(t *testing.T) {
	t.Parallel()

	backend, _ := setupFileSystemBackend(t)
	require.NoError(t, os.WriteFile(backend.Filename(),
		[]byte("a,1\n,"+strings.Repeat("x", 2<<20)+"\nb,2\n"), 0o644))

	reg := prometheus.NewRegistry()

	store, err := NewStore[item](context.TODO(), "items", backend, itemCodec,
		WithMetrics[item](metrics.NewStoreMetrics(reg)))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(store.All()))

	want := fmt.Sprintf(skippedMetric, 1)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "shop_store_skipped_lines_total"))
}

func TestFileSystemBackendFactory(t *testing.T) {
	t.Parallel()

	basedir := t.TempDir()
	factory := FileSystemBackendFactory(FileSystemBackendConfig{Basedir: basedir})

	backend, err := factory(context.TODO(), "orders")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	store, err := NewStore[item](context.TODO(), "orders", backend, itemCodec)
	require.NoError(t, err)
	require.NoError(t, store.Add(context.TODO(), item{ID: "o_12345", Tags: []string{"u_1"}}))

	content, err := os.ReadFile(filepath.Join(basedir, "orders.txt"))
	require.NoError(t, err)
	assert.Equal(t, "o_12345,u_1\n", string(content))
}

func TestLockDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	release, err := LockDir(context.TODO(), dir)
	require.NoError(t, err)

	_, err = LockDir(context.TODO(), dir)
	require.ErrorIs(t, err, ErrDirLocked)

	release()

	release, err = LockDir(context.TODO(), dir)
	require.NoError(t, err)
	release()
}
