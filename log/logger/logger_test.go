package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/logger"
)

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	l, err := logger.New("relay-test", &config.Log{
		Level:   "warning",
		Printer: "file",
		Path:    path,
	})
	require.NoError(t, err)

	l.Trace("l.test.trace", "dropped")
	l.Warning("l.test.warning", "kept")
	l.With(log.String("node", "a")).Error("l.test.error", "kept too")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "[l.test.warning] kept")
	require.Contains(t, lines[0], "logger_test.go")
	require.Contains(t, lines[1], "<node=a>")
}
