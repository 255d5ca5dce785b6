package log

import "strings"

// Level defines log severity
type Level int

const (
	// LevelTrace displays logs with trace level (and above)
	LevelTrace Level = iota
	// LevelWarning displays logs with warning level (and above)
	LevelWarning
	// LevelError displays only logs with error level
	LevelError
)

// ParseLevel converts a level name to a Level. It defaults to LevelTrace
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	}
	return LevelTrace
}

// String returns the short representation of a level
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TR"
	case LevelWarning:
		return "WN"
	case LevelError:
		return "ER"
	}
	return "??"
}

// Logger is an interface for app loggers
type Logger interface {
	Trace(tag, msg string, fields ...Field)
	Warning(tag, msg string, fields ...Field)
	Error(tag, msg string, fields ...Field)

	// With returns a child logger which attaches fields to every line
	With(fields ...Field) Logger
	// AddCalldepth returns a logger which skips n more frames to find the caller
	AddCalldepth(n int) Logger
}

// Ctx carries the metadata of a log line
type Ctx struct {
	Level     string
	Timestamp string
	Service   string
	File      string
}

// Formatter converts a log line to a string
type Formatter interface {
	Format(ctx *Ctx, tag, msg string, fields ...Field) (string, error)
}

// Printer outputs a formatted log line
type Printer interface {
	Print(ctx *Ctx, s string) error
}
