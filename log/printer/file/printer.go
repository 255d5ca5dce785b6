// Package file prints log lines to a file.
package file

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
)

const (
	Name = "file"

	defaultMode = 0660
	flag        = os.O_CREATE | os.O_WRONLY | os.O_APPEND
)

func New(c *config.Log) (log.Printer, error) {
	path := config.ValueOf(c.Path)
	if path == "" {
		return nil, errors.New("missing \"path\" on file log printer config")
	}

	f, err := os.OpenFile(path, flag, defaultMode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	return &Logger{W: f}, nil
}

type Logger struct {
	mu sync.Mutex
	W  io.WriteCloser
}

func (l *Logger) Print(ctx *log.Ctx, s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.W, s+"\n")
	return err
}

func (l *Logger) Close() error {
	return l.W.Close()
}
