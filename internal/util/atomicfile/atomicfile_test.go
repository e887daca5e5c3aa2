package atomicfile_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkrupp/homecase-shop/internal/util/atomicfile"
)

var errWriteFailed = errors.New("write failed")

func TestWriteLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{name: "no lines", lines: nil, want: ""},
		{name: "one line", lines: []string{"a,b"}, want: "a,b\n"},
		{name: "many lines", lines: []string{"a", "b", "c"}, want: "a\nb\nc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", "records.txt")

			if err := atomicfile.WriteLines(path, 0o644, tt.lines); err != nil {
				t.Fatalf("WriteLines() error = %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}

			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteFileKeepsPreviousContentOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "records.txt")

	if err := atomicfile.WriteLines(path, 0o644, []string{"old"}); err != nil {
		t.Fatalf("WriteLines() error = %v", err)
	}

	err := atomicfile.WriteFile(path, 0o644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")

		return errWriteFailed
	})
	if !errors.Is(err, errWriteFailed) {
		t.Fatalf("WriteFile() error = %v, want %v", err, errWriteFailed)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "old\n" {
		t.Errorf("content = %q, want previous content", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("found %d entries, want temp file removed", len(entries))
	}
}
