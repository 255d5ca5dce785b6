package prometheus_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/config"
	"github.com/stairlin/relay/stats/adapter/prometheus"
)

func newClient(t *testing.T) *prometheus.Client {
	c, err := config.Load(strings.NewReader(`
[stats.prometheus]
namespace = "test"
`))
	require.NoError(t, err)

	s, err := prometheus.New(c.Tree().Get("stats").Get("prometheus"))
	require.NoError(t, err)
	return s.(*prometheus.Client)
}

func TestCounterAndGauge(t *testing.T) {
	c := newClient(t)
	tags := map[string]string{"method": "GET"}

	c.Count("http.call", 2, tags)
	c.Count("http.call", 3, tags)
	c.Inc("http.conc", tags)
	c.Inc("http.conc", tags)
	c.Dec("http.conc", tags)
	c.Gauge("pool.size", 7)

	require.Equal(t, 3, testutil.CollectAndCount(c.Registry()))

	expected := `
# HELP test_http_call_total http.call_total
# TYPE test_http_call_total counter
test_http_call_total{method="GET"} 5
# HELP test_http_conc http.conc
# TYPE test_http_conc gauge
test_http_conc{method="GET"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"test_http_call_total", "test_http_conc"))
}

func TestHistogramAndTiming(t *testing.T) {
	c := newClient(t)

	c.Histogram("h.collection.faults", 1)
	c.Histogram("h.collection.faults", 2.5)
	c.Timing("http.time", 20*time.Millisecond, map[string]string{"status": "200"})

	require.Equal(t, 2, testutil.CollectAndCount(c.Registry()))
}

func TestMismatchedLabels(t *testing.T) {
	c := newClient(t)

	c.Inc("http.conc", map[string]string{"method": "GET"})
	// Different label set for the same key is dropped, not panicking
	c.Inc("http.conc", map[string]string{"path": "/"})
	c.Count("http.call", "not a number")

	require.Equal(t, 1, testutil.CollectAndCount(c.Registry()))
}

func TestHandler(t *testing.T) {
	c := newClient(t)
	c.Gauge("pool.size", 7)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	b, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.Contains(t, string(b), "test_pool_size 7")
}
