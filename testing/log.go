package testing

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stairlin/relay/log"
)

const (
	// TC is the TRACE log constant
	TC = "TRACE"
	// WN is the WARNING log constant
	WN = "WARN"
	// ER is the ERROR log constant
	ER = "ERRR"
)

// Logger is a simple Logger interface useful for tests.
// In strict mode, error lines make the test fail.
type Logger struct {
	t      *testing.T
	strict bool
	fields []log.Field

	c *counter
}

type counter struct {
	mu    sync.RWMutex
	lines map[string]int
	tags  map[string]int
}

// NewLogger creates a new logger
func NewLogger(t *testing.T, strict bool) log.Logger {
	return &Logger{
		t:      t,
		strict: strict,
		c: &counter{
			lines: map[string]int{},
			tags:  map[string]int{},
		},
	}
}

func (l *Logger) l(s, tag, msg string, fields ...log.Field) {
	fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	if l.strict && s == ER {
		l.t.Error(s, format(tag, msg, fields...))
	} else {
		l.t.Log(s, format(tag, msg, fields...))
	}
	l.inc(s, tag)
}

func (l *Logger) inc(s, tag string) {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	l.c.lines[s]++
	l.c.tags[tag]++
}

// Lines returns the number of log lines for the given severity
func (l *Logger) Lines(s string) int {
	l.c.mu.RLock()
	defer l.c.mu.RUnlock()
	return l.c.lines[s]
}

// Tags returns the number of log lines emitted with the given tag
func (l *Logger) Tags(tag string) int {
	l.c.mu.RLock()
	defer l.c.mu.RUnlock()
	return l.c.tags[tag]
}

func (l *Logger) Trace(tag, msg string, fields ...log.Field)   { l.l(TC, tag, msg, fields...) }
func (l *Logger) Warning(tag, msg string, fields ...log.Field) { l.l(WN, tag, msg, fields...) }
func (l *Logger) Error(tag, msg string, fields ...log.Field)   { l.l(ER, tag, msg, fields...) }

// With returns a logger sharing the same counters
func (l *Logger) With(fields ...log.Field) log.Logger {
	return &Logger{
		t:      l.t,
		strict: l.strict,
		fields: append(l.fields[:len(l.fields):len(l.fields)], fields...),
		c:      l.c,
	}
}

// AddCalldepth is a no-op, since test lines are not annotated with the caller
func (l *Logger) AddCalldepth(n int) log.Logger {
	return l
}

func format(tag, msg string, fields ...log.Field) string {
	var b bytes.Buffer

	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(msg)
	b.WriteString(" ")

	for _, f := range fields {
		k, v := f.KV()
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v)
		b.WriteString(" ")
	}
	return b.String()
}
