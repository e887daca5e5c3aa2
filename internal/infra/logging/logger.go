package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Constants for log levels that match slog.Level values.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Type aliases for commonly used slog types.
type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

//nolint:gochecknoglobals
var logLevelStrToLevel = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is the application identifier added to all log entries
	AppName string

	// Output specifies where logs are written ("stdout", "stderr", "discard" or a file path)
	Output string `env:"OUTPUT" default:"stderr"`

	// Level sets the minimum log level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"info"`

	// Filter specifies package-level logging overrides ("pkg:level,pkg:level")
	Filter string `env:"FILTER" default:""`

	// JSON enables JSON-formatted output instead of human-readable console output
	JSON bool `env:"JSON" default:"false"`

	// Source adds the calling function and file to each entry
	Source bool `env:"SOURCE" default:"false"`

	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group = slog.Group

	current = struct {
		sync.RWMutex

		config  LoggerConfig
		handler slog.Handler
	}{}
)

// Configure sets up global logging configuration for the application.
// It must be called before any loggers are created; loggers obtained earlier keep
// discarding their output.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	output := cfg.OutputHandle
	if output == nil {
		var err error
		if output, err = openOutput(cfg.Output); err != nil {
			return err
		}
	}

	cfg.AppName = appName
	cfg.OutputHandle = output

	current.Lock()
	current.config = cfg
	current.handler = newHandler(cfg)
	current.Unlock()

	slog.SetLogLoggerLevel(parseLogLevel(cfg.Level, LevelInfo))

	GetLogger("infra.logging").With(Group("config",
		"appName", cfg.AppName,
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
		"source", cfg.Source,
	)).DebugContext(ctx, "logging configured")

	return nil
}

// openOutput resolves the Output setting. Anything other than the well-known names
// is a file that log lines are appended to.
func openOutput(name string) (io.Writer, error) {
	switch name {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// newHandler builds the root handler shared by every logger. It returns nil when
// output is discarded.
func newHandler(cfg LoggerConfig) slog.Handler {
	if cfg.OutputHandle == io.Discard {
		return nil
	}

	level := parseLogLevel(cfg.Level, LevelInfo)

	if cfg.JSON {
		//nolint:exhaustruct
		return NewSessionHandler(slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: cfg.Source,
			Level:     level,
		}))
	}

	//nolint:exhaustruct
	return NewSessionHandler(&ConsoleHandler{
		Output:    cfg.OutputHandle,
		Level:     level,
		PkgLevels: cfg.pkgLevels(),
		Color:     isTerminal(cfg.OutputHandle),
		Source:    cfg.Source,
	})
}

// GetLogger returns a logger with the given name on the configured handler.
// The name is included in log entries to identify the source module.
func GetLogger(name string) Logger {
	current.RLock()
	handler, appName := current.handler, current.config.AppName
	current.RUnlock()

	if handler == nil {
		return NewNopLogger()
	}

	logger := slog.New(handler)

	if appName != "" {
		logger = logger.With("app", appName)
	}

	return logger.With("logger", name)
}

// pkgLevels parses Filter, e.g. "repo:warn,repo.record.store:debug". Malformed
// entries are ignored.
func (cfg LoggerConfig) pkgLevels() map[string]slog.Level {
	levels := make(map[string]slog.Level)

	for _, entry := range strings.Split(cfg.Filter, ",") {
		pkg, level, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || pkg == "" {
			continue
		}

		levels[pkg] = parseLogLevel(level, LevelDebug)
	}

	return levels
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLogLevel(levelStr string, fallback Level) Level {
	level, ok := logLevelStrToLevel[strings.ToLower(strings.TrimSpace(levelStr))]
	if !ok {
		return fallback
	}

	return level
}
