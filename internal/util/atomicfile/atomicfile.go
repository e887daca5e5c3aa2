package atomicfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile replaces the file at path with the content produced by write.
// The content goes to a temporary file in the same directory which is synced and then
// renamed over path, so readers observe either the previous or the new content.
// On error the previous file is left untouched.
func WriteFile(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buffered := bufio.NewWriter(tmp)

	if err := write(buffered); err != nil {
		return fmt.Errorf("write: %w", err)
	} else if err := buffered.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	} else if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	} else if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	} else if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	syncDir(dir)

	return nil
}

// WriteLines writes every line followed by a newline using WriteFile.
func WriteLines(path string, perm os.FileMode, lines []string) error {
	return WriteFile(path, perm, func(w io.Writer) error {
		for _, line := range lines {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err //nolint:wrapcheck
			}
		}

		return nil
	})
}

// syncDir persists the rename. Errors are ignored as not every platform supports it.
func syncDir(dir string) {
	handle, err := os.Open(dir)
	if err != nil {
		return
	}
	defer handle.Close()

	_ = handle.Sync()
}
