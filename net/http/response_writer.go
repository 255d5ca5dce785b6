package http

import (
	"net/http"
	"sync"

	"github.com/stairlin/relay/handler"
)

// ResponseWriter wraps the standard net/http ResponseWriter
//
// It keeps track of the status code, so that a response is never written
// twice, and it reports failures on the underlying connection as
// transport faults.
type ResponseWriter interface {
	http.ResponseWriter

	// Code returns the written status code.
	// If it has not been set yet, it will return 0
	Code() int

	// HasCode returns whether the status code has been set
	HasCode() bool
}

// responseWriter is the implementation of ResponseWriter
type responseWriter struct {
	mu          sync.RWMutex
	http        http.ResponseWriter
	code        int
	codeWritten bool
}

func (r *responseWriter) Header() http.Header {
	return r.http.Header()
}

func (r *responseWriter) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	n, err := r.http.Write(b)
	if err != nil {
		return n, handler.Transport(err)
	}
	return n, nil
}

func (r *responseWriter) WriteHeader(c int) {
	r.mu.Lock()
	if !r.codeWritten {
		r.code = c
		r.codeWritten = true
		r.http.WriteHeader(c)
	}
	r.mu.Unlock()
}

// Flush sends any buffered data to the client
func (r *responseWriter) Flush() {
	if f, ok := r.http.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseWriter) Code() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.code
}

func (r *responseWriter) HasCode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codeWritten
}
