package http

import (
	"net/http"
	"time"
)

// Request wraps the standard net/http Request struct
type Request struct {
	startTime time.Time

	HTTP *http.Request
}

// Method returns the request method
func (r *Request) Method() string {
	return r.HTTP.Method
}

// Target returns the routing target of the request
func (r *Request) Target() string {
	return r.HTTP.URL.Path
}
