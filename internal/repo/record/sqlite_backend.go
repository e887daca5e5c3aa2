package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/homecase-shop/internal/infra/logging"
)

// ErrDatabaseBusy is returned when the database is locked by another connection.
var ErrDatabaseBusy = errors.New("database busy")

// SQLiteBackendConfig holds configuration for the SQLite backend.
type SQLiteBackendConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"data/shop.db"`
}

// SQLiteDatabase owns one database connection shared by the backends of all stores.
// Each store keeps its lines in the records table, keyed by store name.
type SQLiteDatabase struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

// NewSQLiteDatabase opens the database at cfg.DatabasePath and creates the schema if needed.
func NewSQLiteDatabase(cfg SQLiteBackendConfig) (*SQLiteDatabase, error) {
	log := logging.GetLogger("repo.record.sqlite_backend").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir all: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteDatabase{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stores (
			name       TEXT    PRIMARY KEY,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create stores table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			store TEXT    NOT NULL REFERENCES stores(name),
			seq   INTEGER NOT NULL,
			line  TEXT    NOT NULL,
			PRIMARY KEY (store, seq)
		)
	`); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}

	return nil
}

// Backend returns the backend of the store called name. It implements BackendFactory.
func (d *SQLiteDatabase) Backend(_ context.Context, name string) (Backend, error) {
	return &SQLiteBackend{
		name: name,
		db:   d,
		log:  d.log.With(logging.Group("backend", "name", name)),
	}, nil
}

// Close closes the database connection.
func (d *SQLiteDatabase) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// SQLiteBackend implements Backend on a SQLiteDatabase. A store exists once its
// name is registered in the stores table, even if it holds no lines.
type SQLiteBackend struct {
	name string
	db   *SQLiteDatabase
	log  logging.Logger
}

var _ Backend = (*SQLiteBackend)(nil)

// ReadLines implements Backend.ReadLines using SQLite.
func (b *SQLiteBackend) ReadLines(ctx context.Context) (lines []string, exists bool, err error) {
	defer func() {
		if err != nil {
			b.log.ErrorContext(ctx, "read lines failed", "error", err)
		} else {
			b.log.DebugContext(ctx, "lines read", "lines", len(lines), "exists", exists)
		}
	}()

	var updatedAt int64

	err = b.db.db.QueryRowContext(ctx,
		"SELECT updated_at FROM stores WHERE name = ?",
		b.name,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("query store: %w", classify(err))
	}

	rows, err := b.db.db.QueryContext(ctx,
		"SELECT line FROM records WHERE store = ? ORDER BY seq",
		b.name,
	)
	if err != nil {
		return nil, true, fmt.Errorf("query records: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, true, fmt.Errorf("scan record: %w", err)
		}

		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, true, fmt.Errorf("iterate records: %w", classify(err))
	}

	return lines, true, nil
}

// WriteLines implements Backend.WriteLines using SQLite. The previous lines are
// replaced inside a single transaction.
func (b *SQLiteBackend) WriteLines(ctx context.Context, lines []string) (err error) {
	b.db.writeLock.Lock()
	defer b.db.writeLock.Unlock()

	defer func() {
		if err != nil {
			b.log.ErrorContext(ctx, "write lines failed", "error", err)
		} else {
			b.log.DebugContext(ctx, "lines written", "lines", len(lines))
		}
	}()

	tx, err := b.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stores (name, updated_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		b.name,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("upsert store: %w", classify(err))
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE store = ?", b.name); err != nil {
		return fmt.Errorf("delete records: %w", classify(err))
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (store, seq, line) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", classify(err))
	}
	defer stmt.Close()

	for seq, line := range lines {
		if _, err := stmt.ExecContext(ctx, b.name, seq, line); err != nil {
			return fmt.Errorf("insert record: %w", classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}

	return nil
}

// Close implements Backend.Close. The connection is owned by SQLiteDatabase.
func (b *SQLiteBackend) Close() error {
	return nil
}

func classify(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(ErrDatabaseBusy, err)
		default:
			break
		}
	}

	return err
}
