// FILE: relog/src/internal/core/level.go
package core

import "fmt"

// Level is the severity of a log entry. App is the unleveled tier used
// for messages that bypass severity filtering entirely; it renders with
// a blank level column.
type Level int8

const (
	LevelApp Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// Fixed 5-character column labels, index by Level.
var levelLabels = [...]string{
	LevelApp:   "     ",
	LevelError: "ERROR",
	LevelWarn:  " WARN",
	LevelInfo:  " INFO",
	LevelDebug: "DEBUG",
}

// ANSI SGR color codes, index by Level.
var levelColors = [...]string{
	LevelApp:   "37", // white
	LevelError: "31", // red
	LevelWarn:  "33", // yellow
	LevelInfo:  "32", // green
	LevelDebug: "34", // blue
}

// Label returns the fixed-width column label for the level.
func (l Level) Label() string {
	if l < LevelApp || l > LevelDebug {
		return levelLabels[LevelApp]
	}
	return levelLabels[l]
}

// Color returns the ANSI SGR code used to style the level column.
func (l Level) Color() string {
	if l < LevelApp || l > LevelDebug {
		return levelColors[LevelApp]
	}
	return levelColors[l]
}

func (l Level) String() string {
	switch l {
	case LevelApp:
		return "app"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int8(l))
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
