// FILE: relog/src/relog/relog.go

// Package relog is a request-correlated logging front-end for servers
// with many concurrent in-flight requests. Every line carries a fixed
// timestamp/source/level layout plus the correlation id of the request
// that caused it, resolved either from an explicit context or from the
// ambient per-goroutine binding installed by the request middleware.
// Formatting and I/O run through a single buffered reporter, so
// concurrent emission never interleaves and call sites never block on
// the diagnostic stream.
package relog

import (
	"context"
	"io"
	"sync"
	"time"

	"relog/src/internal/core"
	"relog/src/internal/reporter"
)

// Level aliases core.Level for callers.
type Level = core.Level

const (
	LevelApp   = core.LevelApp
	LevelError = core.LevelError
	LevelWarn  = core.LevelWarn
	LevelInfo  = core.LevelInfo
	LevelDebug = core.LevelDebug
)

// ParseLevel converts a level name ("error", "warning", "info",
// "debug") to a Level.
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}

// Options configures the process-wide logging state. The zero value
// means: level info, logging enabled, backtraces enabled, stderr
// output, color auto-detected.
type Options struct {
	// Level is the default severity threshold. Zero means LevelInfo.
	Level Level

	// Enabled is the master switch. Nil means enabled.
	Enabled *bool

	// Backtraces controls whether the traffic middleware logs stack
	// traces on handler panics. Nil means enabled.
	Backtraces *bool

	// Output is the diagnostic stream. Nil means stderr.
	Output io.Writer

	// Colorize forces ANSI color on or off. Nil probes the output.
	Colorize *bool

	// QueueSize caps the reporter's pending write queue.
	QueueSize int
}

// registry is the process-wide logging state: the single active
// reporter plus level configuration and the named source table.
type registry struct {
	mu         sync.RWMutex
	rep        *reporter.Reporter
	level      core.Level
	enabled    bool
	backtraces bool
	sources    map[string]*Source
}

var (
	global = &registry{
		level:      core.LevelInfo,
		enabled:    true,
		backtraces: true,
		sources:    make(map[string]*Source),
	}
	initOnce sync.Once
)

// Initialize configures the global logging state and creates the
// reporter. It is Once-guarded: the first caller (or the first log
// call, whichever comes first) wins, and repeated calls never register
// a second reporter. Environment-dependent setup such as the terminal
// color probe happens here, not at process start.
func Initialize(opts Options) {
	initOnce.Do(func() { apply(opts) })
}

// ensure performs lazy first-use initialization with defaults for
// callers that never invoke Initialize.
func ensure() *reporter.Reporter {
	initOnce.Do(func() { apply(Options{}) })
	global.mu.RLock()
	rep := global.rep
	global.mu.RUnlock()
	return rep
}

func apply(opts Options) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if opts.Level != LevelApp {
		global.level = opts.Level
	}
	global.enabled = opts.Enabled == nil || *opts.Enabled
	global.backtraces = opts.Backtraces == nil || *opts.Backtraces
	global.rep = reporter.New(reporter.Config{
		Output:    opts.Output,
		Colorize:  opts.Colorize,
		QueueSize: opts.QueueSize,
	})
}

// BacktracesEnabled reports whether handler panics should be logged
// with their stack traces.
func BacktracesEnabled() bool {
	ensure()
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.backtraces
}

// Sync blocks until every log line scheduled before the call has been
// written to the output stream.
func Sync() {
	ensure().Sync()
}

// ReporterStats summarizes reporter activity.
type ReporterStats struct {
	TotalWritten uint64
	TotalDropped uint64
	WriteErrors  uint64
	LastWrite    time.Time
}

// Stats returns the reporter's counters.
func Stats() ReporterStats {
	s := ensure().GetStats()
	return ReporterStats{
		TotalWritten: s.TotalWritten,
		TotalDropped: s.TotalDropped,
		WriteErrors:  s.WriteErrors,
		LastWrite:    s.LastWrite,
	}
}

// Shutdown flushes scheduled writes and stops the background writer.
// Logging after Shutdown is silently dropped.
func Shutdown() {
	ensure().Stop()
}

// Default is the process's unnamed source; its lines render with a
// blank source column.
var Default = New("")

// Log emits an unleveled line on the default source. Unleveled lines
// bypass severity filtering and render with a blank level column.
func Log(ctx context.Context, format string, args ...any) {
	Default.Log(ctx, format, args...)
}

// Error emits an ERROR line on the default source.
func Error(ctx context.Context, format string, args ...any) {
	Default.Error(ctx, format, args...)
}

// Warning emits a WARN line on the default source.
func Warning(ctx context.Context, format string, args ...any) {
	Default.Warning(ctx, format, args...)
}

// Info emits an INFO line on the default source.
func Info(ctx context.Context, format string, args ...any) {
	Default.Info(ctx, format, args...)
}

// Debug emits a DEBUG line on the default source.
func Debug(ctx context.Context, format string, args ...any) {
	Default.Debug(ctx, format, args...)
}
