package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mkrupp/homecase-shop/internal/infra/logging"
)

// ErrDirLocked is returned when another process already holds the data directory.
var ErrDirLocked = errors.New("data directory in use by another process")

// LockDir takes an exclusive, non-blocking lock on <dir>/.lock for the lifetime of the
// process. Stores rewrite whole files, so two processes sharing a directory would lose
// updates; the lock turns that into an error at startup.
// Returns a function to release the lock.
func LockDir(ctx context.Context, dir string) (release func(), err error) {
	lockfile := filepath.Join(dir, ".lock")
	log := logging.GetLogger("repo.record.dir_lock").With(logging.Group("lock", "lockfile", lockfile))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "lock failed", "error", err)
		} else {
			log.DebugContext(ctx, "lock acquired")
		}
	}()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()

		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrDirLocked, dir)
		}

		return nil, fmt.Errorf("flock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()

		log.DebugContext(ctx, "lock released")
	}, nil
}
