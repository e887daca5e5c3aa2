package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	context_ "github.com/mkrupp/homecase-shop/internal/infra/context"

	. "github.com/mkrupp/homecase-shop/internal/infra/logging"
)

func newTestLogger(buf *bytes.Buffer, name string, pkgLevels map[string]slog.Level) *slog.Logger {
	handler := &ConsoleHandler{
		Output:    buf,
		Level:     LevelDebug,
		PkgLevels: pkgLevels,
	}

	return slog.New(NewSessionHandler(handler)).With("logger", name)
}

func TestConsoleHandler_PkgLevels(t *testing.T) {
	t.Parallel()

	pkgLevels := map[string]slog.Level{
		"repo":              LevelWarn,
		"repo.record.store": LevelDebug,
	}

	tests := []struct {
		name    string
		logger  string
		level   slog.Level
		wantOut bool
	}{
		{name: "unfiltered logger", logger: "svc.usersvc", level: LevelDebug, wantOut: true},
		{name: "below package level", logger: "repo.record.filesystem_backend", level: LevelInfo, wantOut: false},
		{name: "at package level", logger: "repo.record.filesystem_backend", level: LevelWarn, wantOut: true},
		{name: "more specific level wins", logger: "repo.record.store", level: LevelDebug, wantOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			newTestLogger(&buf, tt.logger, pkgLevels).Log(context.Background(), tt.level, "hello")

			if got := buf.Len() > 0; got != tt.wantOut {
				t.Errorf("output written = %v, want %v (%q)", got, tt.wantOut, buf.String())
			}
		})
	}
}

func TestConsoleHandler_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := newTestLogger(&buf, "svc.ordersvc", nil).With(Group("order", "id", "o_12345"))

	ctx := context_.WithActor(context_.WithSessionID(context.Background(), "s-1"), "u_0000000001")
	log.InfoContext(ctx, "order placed", "total", 3)

	out := buf.String()

	for _, want := range []string{
		"[INFO] order placed |",
		" total=3",
		" session.id=s-1",
		" session.actor=u_0000000001",
		" logger=svc.ordersvc",
		" order.id=o_12345",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}

	if strings.Contains(out, "\033[") {
		t.Errorf("output %q contains color codes", out)
	}
}
