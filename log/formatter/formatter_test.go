package formatter_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/log"
	"github.com/stairlin/relay/log/formatter"
)

var lineCtx = &log.Ctx{
	Level:     "TR",
	Timestamp: "2017-01-01T00:00:00Z",
	Service:   "relay",
	File:      "collection.go:42",
}

func TestAdapters(t *testing.T) {
	require.Equal(t, []string{"json", "logf"}, formatter.Adapters())
}

func TestUnknownAdapter(t *testing.T) {
	_, err := formatter.New(&config.Log{Formatter: "xml"})
	require.Error(t, err)
}

func TestLogf(t *testing.T) {
	f, err := formatter.New(&config.Log{})
	require.NoError(t, err)

	s, err := f.Format(lineCtx, "h.test", "Hello", log.String("foo", "bar"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(s, "TR 2017-01-01T00:00:00Z relay collection.go:42"))
	require.True(t, strings.HasSuffix(s, "[h.test] Hello <foo=bar>"), s)
}

func TestJSON(t *testing.T) {
	f, err := formatter.New(&config.Log{Formatter: "json"})
	require.NoError(t, err)

	s, err := f.Format(lineCtx, "h.test", "Hello", log.Int("n", 3))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	require.Equal(t, "h.test", out["tag"])
	require.Equal(t, "Hello", out["msg"])
	require.Equal(t, map[string]interface{}{"n": "3"}, out["fields"])
}
