package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"shotsync/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format is "console" or "json".
	Format string
	// Console receives human-oriented output, usually os.Stderr. Nil disables it.
	Console io.Writer
	// FilePath, when set, receives a copy of every record in the same format.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var handlers []slog.Handler
	if opts.Console != nil {
		handlers = append(handlers, newHandler(format, opts.Console, levelVar, addSource, isTerminal(opts.Console)))
	}
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, newHandler(format, file, levelVar, addSource, false))
	}

	return slog.New(newFanoutHandler(handlers...)), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// output goes to console, normally stderr, so command output on stdout stays
// machine-readable.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}
	return New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  console,
		FilePath: FilePath(cfg),
	})
}

// FilePath is the log file for cfg, or "" when no log directory is set.
func FilePath(cfg *config.Config) string {
	if cfg == nil || cfg.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "shotsync.log")
}

func newHandler(format string, w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	if format == "json" {
		return newJSONHandler(w, lvl, addSource)
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		AddSource:  addSource,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
