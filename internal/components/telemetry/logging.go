package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 5
)

// LogOptions configures the process-wide slog logger.
type LogOptions struct {
	Verbose bool
	// File is the path of a JSON log file appended to on every run, empty disables it.
	File string
	// MaxSizeMB is the size at which File is rotated, defaults to 10.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept, defaults to 5.
	MaxBackups int
	// Console defaults to os.Stdout when nil.
	Console io.Writer
}

// InitSlog installs the default slog logger: a text handler on the console plus
// an optional JSON handler on a size-rotated log file. The returned func closes the file.
func InitSlog(opts LogOptions) (func() error, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}
	handlers := []slog.Handler{slog.NewTextHandler(console, handlerOpts)}

	closeFn := func() error { return nil }
	if opts.File != "" {
		err := os.MkdirAll(filepath.Dir(opts.File), 0o755)
		if err != nil {
			return closeFn, err
		}
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = defaultLogMaxSizeMB
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = defaultLogMaxBackups
		}
		f := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
		closeFn = f.Close
	}

	slog.SetDefault(slog.New(fanout{handlers: handlers}))
	return closeFn, nil
}

// fanout sends each record to every handler that accepts its level.
type fanout struct {
	handlers []slog.Handler
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		err := h.Handle(ctx, r.Clone())
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return fanout{handlers: next}
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return fanout{handlers: next}
}
