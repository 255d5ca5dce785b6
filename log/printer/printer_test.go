package printer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/printer"
)

func TestPrinters(t *testing.T) {
	require.Equal(t, []string{"file", "stdout"}, printer.Printers())
}

func TestFilePrinter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	p, err := printer.New(&config.Log{Printer: "file", Path: path})
	require.NoError(t, err)
	require.NoError(t, p.Print(&log.Ctx{Level: "TR"}, "first"))
	require.NoError(t, p.Print(&log.Ctx{Level: "ER"}, "second"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first\nsecond\n", string(b))
}

func TestFilePrinterMissingPath(t *testing.T) {
	_, err := printer.New(&config.Log{Printer: "file"})
	require.Error(t, err)
}
