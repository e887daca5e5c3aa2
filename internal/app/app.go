// Package app constructs the stores and services of the shop once and owns them
// until Close.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/infra/metrics"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/svc/ordersvc"
	"github.com/mkrupp/homecase-shop/internal/svc/productsvc"
	"github.com/mkrupp/homecase-shop/internal/svc/reportsvc"
	"github.com/mkrupp/homecase-shop/internal/svc/usersvc"
)

// Store backends selectable with StoreConfig.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned for an unsupported StoreConfig.Backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	// Backend is "file" (one text file per store) or "sqlite"
	Backend string `env:"BACKEND" default:"file"`

	FS     record.FileSystemBackendConfig `envPrefix:"FS_"`
	SQLite record.SQLiteBackendConfig     `envPrefix:"SQLITE_"`
}

// Config holds the configuration of all services.
type Config struct {
	Store   StoreConfig            `envPrefix:"STORE_"`
	Order   ordersvc.OrderConfig   `envPrefix:"ORDER_"`
	Report  reportsvc.ReportConfig `envPrefix:"REPORT_"`
	Metrics metrics.MetricsConfig  `envPrefix:"METRICS_"`
}

// App owns the services and the resources behind them.
type App struct {
	Config   Config
	Users    *usersvc.UserService
	Products *productsvc.ProductService
	Orders   *ordersvc.OrderService
	Reports  *reportsvc.ReportService
	Registry *prometheus.Registry
	Log      logging.Logger

	closers []func() error
}

// New locks the data directory, opens the configured backend and loads all stores.
func New(ctx context.Context, cfg Config) (_ *App, err error) {
	app := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		Log:      logging.GetLogger("app"),
	}

	defer func() {
		if err != nil {
			_ = app.closeAll()
			app.Log.ErrorContext(ctx, "startup failed", "error", err)
		} else {
			app.Log.DebugContext(ctx, "started", "backend", cfg.Store.Backend)
		}
	}()

	release, err := record.LockDir(ctx, app.dataDir())
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}

	app.onClose(func() error {
		release()

		return nil
	})

	factory, err := app.backendFactory()
	if err != nil {
		return nil, err
	}

	m := metrics.NewStoreMetrics(app.Registry)

	users, err := usersvc.NewStore(ctx, factory, m)
	if err != nil {
		return nil, fmt.Errorf("new users store: %w", err)
	}

	app.Users = usersvc.NewUserService(users)
	app.onClose(app.Users.Close)

	products, err := productsvc.NewStore(ctx, factory, m)
	if err != nil {
		return nil, fmt.Errorf("new products store: %w", err)
	}

	app.Products = productsvc.NewProductService(products)
	app.onClose(app.Products.Close)

	orders, err := ordersvc.NewStore(ctx, factory, m)
	if err != nil {
		return nil, fmt.Errorf("new orders store: %w", err)
	}

	app.Orders = ordersvc.NewOrderService(orders, app.Products, cfg.Order)
	app.onClose(app.Orders.Close)

	app.Reports = reportsvc.NewReportService(app.Orders, app.Products, cfg.Report)

	return app, nil
}

func (a *App) dataDir() string {
	if a.Config.Store.Backend == BackendSQLite {
		return filepath.Dir(a.Config.Store.SQLite.DatabasePath)
	}

	return a.Config.Store.FS.Basedir
}

func (a *App) backendFactory() (record.BackendFactory, error) {
	switch a.Config.Store.Backend {
	case BackendFile:
		return record.FileSystemBackendFactory(a.Config.Store.FS), nil
	case BackendSQLite:
		db, err := record.NewSQLiteDatabase(a.Config.Store.SQLite)
		if err != nil {
			return nil, fmt.Errorf("new sqlite database: %w", err)
		}

		a.onClose(db.Close)

		return db.Backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, a.Config.Store.Backend)
	}
}

// Wipe deletes every order, product and customer. Admins are kept and the catalog
// is not seeded again.
func (a *App) Wipe(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			a.Log.ErrorContext(ctx, "wipe failed", "error", err)
		} else {
			a.Log.InfoContext(ctx, "all data wiped")
		}
	}()

	if _, err := a.Orders.DeleteAll(ctx, ""); err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}

	if _, err := a.Products.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}

	if _, err := a.Users.DeleteAllCustomers(ctx); err != nil {
		return fmt.Errorf("delete customers: %w", err)
	}

	return nil
}

// Close writes the metrics textfile and releases everything New acquired, in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := metrics.WriteTextfile(a.Config.Metrics, a.Registry); err != nil {
		errs = append(errs, fmt.Errorf("write metrics: %w", err))
	}

	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		a.Log.ErrorContext(ctx, "close failed", "error", err)
	}

	return err
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) closeAll() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}
