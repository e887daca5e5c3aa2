package record

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/util/atomicfile"
)

// FileSystemBackendConfig holds configuration for the text file backend.
type FileSystemBackendConfig struct {
	// Basedir is the directory holding one "<name>.txt" file per store
	Basedir string `env:"BASEDIR" default:"data"`
}

// FileSystemBackendFactory creates a factory function that returns a new FileSystemBackend.
// The factory function implements the BackendFactory type.
func FileSystemBackendFactory(cfg FileSystemBackendConfig) BackendFactory {
	return func(ctx context.Context, name string) (Backend, error) {
		return NewFileSystemBackend(ctx, name, cfg)
	}
}

// NewFileSystemBackend creates the backend for the store called name, stored in
// <basedir>/<name>.txt. The base directory is created if needed.
func NewFileSystemBackend(ctx context.Context, name string, cfg FileSystemBackendConfig) (*FileSystemBackend, error) {
	log := logging.GetLogger("repo.record.filesystem_backend").With(
		logging.Group("backend",
			"basedir", cfg.Basedir,
			"name", name,
		),
	)

	if err := os.MkdirAll(cfg.Basedir, 0o755); err != nil {
		log.ErrorContext(ctx, "init storage failed", "error", err)

		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	return &FileSystemBackend{
		filename: filepath.Join(cfg.Basedir, name+".txt"),
		log:      log,
	}, nil
}

// FileSystemBackend implements Backend with one text file, one record per line.
// Writes go through a temporary file that is renamed over the target.
type FileSystemBackend struct {
	filename string
	log      logging.Logger
}

var _ Backend = (*FileSystemBackend)(nil)

// Filename returns the path of the backing file.
func (b *FileSystemBackend) Filename() string {
	return b.filename
}

// ReadLines implements Backend.ReadLines. A missing file yields no lines and exists=false.
// Lines have no length limit; deciding whether a line is usable is left to the codec.
func (b *FileSystemBackend) ReadLines(ctx context.Context) (lines []string, exists bool, err error) {
	defer func() {
		if err != nil {
			b.log.ErrorContext(ctx, "read lines failed", "error", err)
		} else {
			b.log.DebugContext(ctx, "lines read", "lines", len(lines), "exists", exists)
		}
	}()

	file, err := os.Open(b.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}

		if errors.Is(err, io.EOF) {
			return lines, true, nil
		} else if err != nil {
			return nil, true, fmt.Errorf("read: %w", err)
		}
	}
}

// WriteLines implements Backend.WriteLines.
func (b *FileSystemBackend) WriteLines(ctx context.Context, lines []string) (err error) {
	defer func() {
		if err != nil {
			b.log.ErrorContext(ctx, "write lines failed", "error", err)
		} else {
			b.log.DebugContext(ctx, "lines written", "lines", len(lines))
		}
	}()

	if err := atomicfile.WriteLines(b.filename, 0o644, lines); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// Close implements Backend.Close. The file backend holds no open handles.
func (b *FileSystemBackend) Close() error {
	return nil
}
