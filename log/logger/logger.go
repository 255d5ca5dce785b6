// Package logger assembles the formatter and the printer selected by the
// config into a log.Logger.
package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/formatter"
	"github.com/stairlin/relay/log/printer"
)

// New returns a logger writing the lines of service at or above the
// configured level
func New(service string, c *config.Log) (log.Logger, error) {
	f, err := formatter.New(c)
	if err != nil {
		return nil, err
	}
	p, err := printer.New(c)
	if err != nil {
		return nil, err
	}

	return &Logger{
		service: service,
		min:     log.ParseLevel(c.Level),
		fmt:     f,
		out:     p,
		skip:    1,
		now:     time.Now,
	}, nil
}

// Logger formats lines and hands them over to a printer. Loggers derived
// with With and AddCalldepth share the formatter and the printer.
type Logger struct {
	service string
	min     log.Level
	fmt     log.Formatter
	out     log.Printer
	skip    int
	now     func() time.Time

	fields []log.Field
}

// Trace logs the steps of a request or of a lifecycle transition
func (l *Logger) Trace(tag, msg string, fields ...log.Field) {
	l.write(log.LevelTrace, tag, msg, fields)
}

// Warning logs an unexpected event the service recovered from
func (l *Logger) Warning(tag, msg string, fields ...log.Field) {
	l.write(log.LevelWarning, tag, msg, fields)
}

// Error logs a failure someone needs to look at
func (l *Logger) Error(tag, msg string, fields ...log.Field) {
	l.write(log.LevelError, tag, msg, fields)
}

// With returns a logger adding fields to every line
func (l *Logger) With(fields ...log.Field) log.Logger {
	d := *l
	d.fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	return &d
}

// AddCalldepth returns a logger reporting the caller n frames further up
func (l *Logger) AddCalldepth(n int) log.Logger {
	d := *l
	d.skip += n
	return &d
}

func (l *Logger) write(lvl log.Level, tag, msg string, fields []log.Field) {
	if lvl < l.min {
		return
	}

	ctx := log.Ctx{
		Level:     lvl.String(),
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Service:   l.service,
		File:      l.caller(),
	}
	if len(l.fields) > 0 {
		fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	}

	line, err := l.fmt.Format(&ctx, tag, msg, fields...)
	if err != nil {
		line = fmt.Sprintf("log formatter error <%s>", err)
	}
	l.out.Print(&ctx, line)
}

// caller returns the file:line of the code which emitted the line
func (l *Logger) caller() string {
	// write and the level method sit between the caller and here
	_, file, line, ok := runtime.Caller(l.skip + 2)
	if !ok {
		return "???:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
