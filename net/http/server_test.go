package http_test

import (
	"fmt"
	"io"
	netHttp "net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/stairlin/relay/ctx/journey"
	"github.com/stairlin/relay/handler"
	"github.com/stairlin/relay/net/http"
	lt "github.com/stairlin/relay/testing"
)

func write(s string) *handler.Func {
	return handler.NewFunc(func(ctx journey.Ctx, target string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func fail(err error) *handler.Func {
	return handler.NewFunc(func(ctx journey.Ctx, target string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		return err
	})
}

func newServer(t *testing.T, tt *lt.T, h ...handler.H) (*http.Server, *httptest.Server) {
	root := handler.New(h...)
	root.SetCtx(tt.NewAppCtx("test-http"))
	require.NoError(t, root.Start())

	s := http.NewServer(root)
	ts := httptest.NewServer(s.Handler(root.Ctx()))
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*netHttp.Response, string) {
	res, err := netHttp.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestServe(t *testing.T) {
	tt := lt.New(t)
	var target string
	capture := handler.NewFunc(func(ctx journey.Ctx, tgt string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		target = tgt
		return nil
	})
	_, ts := newServer(t, tt, write("hello "), capture, write("world"))

	res, body := get(t, ts.URL+"/foo/bar")
	require.Equal(t, netHttp.StatusOK, res.StatusCode)
	require.Equal(t, "hello world", body)
	require.Equal(t, "/foo/bar", target)
	require.NotEmpty(t, res.Header.Get("Request-Id"))

	stats := tt.Stats().(*lt.Stats)
	require.Equal(t, 1, stats.Calls("http.call"))
	require.Equal(t, 1, stats.Calls("http.time"))
	require.Equal(t, 2, stats.Calls("http.conc"))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		h        []handler.H
		expected int
		errors   int
	}{
		{name: "not found", h: []handler.H{fail(nil)}, expected: netHttp.StatusNotFound},
		{name: "empty chain", h: []handler.H{}, expected: netHttp.StatusNotFound},
		{
			name:     "application fault",
			h:        []handler.H{fail(errors.New("boom"))},
			expected: netHttp.StatusInternalServerError,
			errors:   1,
		},
		{
			name:     "multi fault",
			h:        []handler.H{fail(errors.New("boom")), fail(errors.New("bang"))},
			expected: netHttp.StatusInternalServerError,
			errors:   1,
		},
		{
			name:     "fault after response",
			h:        []handler.H{write("ok"), fail(errors.New("boom"))},
			expected: netHttp.StatusOK,
			errors:   1,
		},
		{
			name:     "fatal",
			h:        []handler.H{fail(errors.Wrap(handler.ErrFatal, "stop")), write("ok")},
			expected: netHttp.StatusInternalServerError,
			errors:   1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tt := lt.New(t)
			tt.DisableStrictMode()
			_, ts := newServer(t, tt, test.h...)

			res, _ := get(t, ts.URL+"/foo")
			require.Equal(t, test.expected, res.StatusCode)
			require.Equal(t, test.errors, tt.Logger().(*lt.Logger).Lines(lt.ER))
		})
	}
}

func TestPanic(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	_, ts := newServer(t, tt, handler.NewFunc(func(ctx journey.Ctx, target string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		panic("boom")
	}))

	res, _ := get(t, ts.URL+"/foo")
	require.Equal(t, netHttp.StatusInternalServerError, res.StatusCode)
}

// brokenWriter simulates a connection closed by the client
type brokenWriter struct {
	header netHttp.Header
	code   int
}

func (w *brokenWriter) Header() netHttp.Header      { return w.header }
func (w *brokenWriter) WriteHeader(code int)        { w.code = code }
func (w *brokenWriter) Write(b []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestTransportFault(t *testing.T) {
	tt := lt.New(t)
	next := write("never")
	root := handler.New(write("hello"), next)
	root.SetCtx(tt.NewAppCtx("test-http"))
	require.NoError(t, root.Start())

	var faults int
	spy := handler.NewFunc(func(ctx journey.Ctx, target string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		err := root.Handle(ctx, target, w, r)
		if handler.IsTransport(err) {
			faults++
		}
		return err
	})
	chain := handler.New(spy)
	chain.SetCtx(root.Ctx())
	require.NoError(t, chain.Start())

	s := http.NewServer(chain)
	w := &brokenWriter{header: netHttp.Header{}}
	s.Handler(chain.Ctx()).ServeHTTP(w, httptest.NewRequest(netHttp.MethodGet, "/foo", nil))

	require.Equal(t, 1, faults)
	require.Equal(t, 1, tt.Logger().(*lt.Logger).Lines(lt.WN))
	require.Equal(t, 0, tt.Logger().(*lt.Logger).Lines(lt.ER))
}

func TestHealthAndDrain(t *testing.T) {
	tt := lt.New(t)
	s, ts := newServer(t, tt, write("ok"))

	res, _ := get(t, ts.URL+http.HealthPath)
	require.Equal(t, netHttp.StatusOK, res.StatusCode)

	s.Drain()

	res, _ = get(t, ts.URL+http.HealthPath)
	require.Equal(t, netHttp.StatusServiceUnavailable, res.StatusCode)
	res, _ = get(t, ts.URL+"/foo")
	require.Equal(t, netHttp.StatusServiceUnavailable, res.StatusCode)
}

func TestDrainDuringRequests(t *testing.T) {
	tt := lt.New(t)
	var inflight int32
	slow := handler.NewFunc(func(ctx journey.Ctx, target string, w netHttp.ResponseWriter, r *netHttp.Request) error {
		atomic.AddInt32(&inflight, 1)
		defer atomic.AddInt32(&inflight, -1)
		time.Sleep(time.Millisecond)
		_, err := io.WriteString(w, "ok")
		return err
	})
	root := handler.New(slow)
	root.SetCtx(tt.NewAppCtx("test-http"))
	require.NoError(t, root.Start())

	s := http.NewServer(root)
	h := s.Handler(root.Ctx())

	var wg sync.WaitGroup
	codes := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(netHttp.MethodGet, "/foo", nil))
			codes <- w.Code
		}()
	}

	time.Sleep(2 * time.Millisecond)
	s.Drain()
	require.Equal(t, int32(0), atomic.LoadInt32(&inflight), "expect drain to wait for in-flight requests")

	wg.Wait()
	close(codes)
	for code := range codes {
		if code != netHttp.StatusOK && code != netHttp.StatusServiceUnavailable {
			t.Errorf("expect 200 or 503, but got %d", code)
		}
	}
}

func TestServeAddr(t *testing.T) {
	tt := lt.New(t)
	root := handler.New(write("ok"))
	appCtx := tt.NewAppCtx("test-http")
	root.SetCtx(appCtx)
	require.NoError(t, root.Start())

	s := http.NewServer(root, http.OptReadHeaderTimeout(time.Second))
	addr := fmt.Sprintf("127.0.0.1:%d", 19900)

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(addr, appCtx)
	}()

	// Ensure the server is ready to serve requests
	var lastRes *netHttp.Response
	for attempt := 1; attempt <= 10; attempt++ {
		res, err := netHttp.Get(fmt.Sprintf("http://%s%s", addr, http.HealthPath))
		if err == nil {
			res.Body.Close()
			lastRes = res
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1<<attempt))
	}
	require.NotNil(t, lastRes, "expect server to be reachable")
	require.Equal(t, netHttp.StatusOK, lastRes.StatusCode)

	s.Drain()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("expect Serve to return once drained")
	}
}
