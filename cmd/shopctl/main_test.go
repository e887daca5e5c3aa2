package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-shop/internal/app"
	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/paging"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/svc/ordersvc"
	"github.com/mkrupp/homecase-shop/internal/svc/reportsvc"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()

	return Config{
		App: app.Config{
			Store: app.StoreConfig{
				Backend: app.BackendFile,
				FS:      record.FileSystemBackendConfig{Basedir: filepath.Join(dir, "data")},
			},
			Order: ordersvc.OrderConfig{TestdataYear: 2024, TestdataMin: 1, TestdataMax: 3},
			Report: reportsvc.ReportConfig{
				Dir:          filepath.Join(dir, "reports"),
				Width:        400,
				Height:       250,
				Format:       "png",
				Interpolator: "nearestneighbor",
				TopSellers:   5,
			},
		},
	}
}

// shopctl runs one command and returns its standard output.
func shopctl(t *testing.T, cfg Config, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	err := run(context.TODO(), cfg, args, &stdout, &stderr)

	return stdout.String(), err
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"unknown subcommand", []string{"products", "frobnicate"}},
		{"extra argument", []string{"-u", "admin", "-p", "admin123", "login", "extra"}},
		{"wipe unconfirmed", []string{"-u", "admin", "-p", "admin123", "wipe"}},
		{"unknown flag", []string{"-u", "admin", "-p", "admin123", "products", "list", "-color"}},
	}

	for _, tc := range tests {
		_, err := shopctl(t, cfg, tc.args...)
		require.ErrorIs(t, err, errUsage, tc.name)
	}
}

func TestRun_Access(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	_, err := shopctl(t, cfg, "products", "list")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = shopctl(t, cfg, "-u", "admin", "-p", "wrong", "products", "list")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = shopctl(t, cfg, "register", "-name", "alice_1", "-password", "secret1", "-email", "alice@example.com")
	require.NoError(t, err)

	_, err = shopctl(t, cfg, "-u", "alice_1", "-p", "secret1", "customers", "list")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = shopctl(t, cfg, "-u", "alice_1", "-p", "secret1", "orders", "list", "-customer", "u_0000000000")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = shopctl(t, cfg, "-u", "admin", "-p", "admin123", "orders", "place", "p_001")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	cfg.Login = LoginConfig{Name: "alice_1", Password: "secret1"}

	out, err := shopctl(t, cfg, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as alice_1")
}

func TestRun_Scenario(t *testing.T) {
	t.Parallel()

	var (
		cfg   = testConfig(t)
		admin = []string{"-u", "admin", "-p", "admin123"}
		alice = []string{"-u", "alice_1", "-p", "secret1"}
	)

	as := func(who []string, args ...string) string {
		t.Helper()

		out, err := shopctl(t, cfg, append(append([]string(nil), who...), args...)...)
		require.NoError(t, err, args)

		return out
	}

	out := as(nil, "register", "-name", "alice_1", "-password", "secret1", "-email", "alice@example.com", "-phone", "0412345678")
	assert.Contains(t, out, "registered alice_1")

	out = as(admin, "products", "list", "-page", "3")
	assert.Contains(t, out, "p_030")
	assert.Contains(t, out, "page 3 of 3, 30 records")

	_, err := shopctl(t, cfg, append(admin, "products", "list", "-page", "4")...)
	require.ErrorIs(t, err, paging.ErrInvalidPage)

	out = as(alice, "products", "search", "macbook")
	assert.Contains(t, out, "MacBook Pro")

	out = as(alice, "orders", "place", "p_001")
	assert.Contains(t, out, "1299.99")

	as(admin, "products", "update", "p_001", "-price", "999.5")

	out = as(alice, "products", "show", "p_001")
	assert.Contains(t, out, "999.50")

	// the order keeps the price it was placed at
	out = as(alice, "orders", "list")
	assert.Contains(t, out, "1299.99")
	assert.Contains(t, out, "page 1 of 1, 1 records")

	out = as(alice, "profile", "update", "mobile", "0398765432")
	assert.Contains(t, out, "0398765432")

	out = as(admin, "customers", "search", "ALICE")
	assert.Contains(t, out, "alice@example.com")

	out = as(admin, "testdata")
	assert.Contains(t, out, "for 1 customers")

	out = as(admin, "reports")
	assert.Contains(t, out, "MacBook Pro")

	for _, name := range []string{"top_sellers.png", "category_counts.png", "consumption.png"} {
		_, err := os.Stat(filepath.Join(cfg.App.Report.Dir, name))
		require.NoError(t, err, name)
	}

	out = as(alice, "reports")
	assert.Contains(t, out, "consumption_u_")

	out = as(admin, "products", "categories")
	assert.Equal(t, 6, strings.Count(out, "\n"))

	out = as(admin, "wipe", "-yes")
	assert.Contains(t, out, "deleted all")

	_, err = shopctl(t, cfg, append(alice, "login")...)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	out = as(admin, "products", "list")
	assert.Contains(t, out, "page 1 of 1, 0 records")
}
