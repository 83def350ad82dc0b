// FILE: relog/src/internal/core/entry.go
package core

import "time"

// Column widths of the rendered line.
const (
	SourceWidth = 15
	LevelWidth  = 5
)

// Entry represents a single log record on its way to the reporter.
// The message is rendered eagerly at the call site; the entry itself is
// transient and never persisted.
type Entry struct {
	Time      time.Time
	Source    string
	Level     Level
	RequestID string
	Message   string
}
