package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// SlogAPI implements API using the log/slog package.
type SlogAPI struct{}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

// log keeps the source location pointing at the caller of the Report* method
// instead of this file.
func (SlogAPI) log(level slog.Level, msg string, args []any) {
	logger := slog.Default()
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [Callers, log, Report*, ScopedAPI.Report*]
	runtime.Callers(4, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = logger.Handler().Handle(ctx, r)
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log(slog.LevelError, "broken component", remainingPairs)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.log(slog.LevelWarn, "warning", remainingPairs)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.log(slog.LevelDebug, message, remainingPairs)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.log(slog.LevelInfo, "count", []any{"id", id, "n", count})
}
