//go:build integration || all

package app_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/svc/usersvc"

	. "github.com/mkrupp/homecase-shop/internal/app"
)

func TestNew_SQLiteBackend(t *testing.T) {
	t.Parallel()

	ctx := context.TODO()
	cfg := testConfig(t, BackendSQLite)

	app, err := New(ctx, cfg)
	require.NoError(t, err)

	assert.Len(t, app.Products.All(ctx), 30)

	_, err = app.Users.Register(ctx, usersvc.Registration{Name: "alice_1", Password: "pass123", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = app.Orders.Place(ctx, "c_001", "p_005")
	require.NoError(t, err)

	require.NoError(t, app.Close(ctx))

	_, err = os.Stat(cfg.Store.SQLite.DatabasePath)
	require.NoError(t, err)

	reopened, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close(ctx) })

	_, err = reopened.Users.Login(ctx, "alice_1", "pass123")
	require.NoError(t, err)

	_, err = reopened.Users.Login(ctx, domain.DefaultAdminName, domain.DefaultAdminPassword)
	require.NoError(t, err)

	assert.Len(t, reopened.Products.All(ctx), 30)
	assert.Len(t, reopened.Orders.ForCustomer(ctx, "c_001"), 1)
}
