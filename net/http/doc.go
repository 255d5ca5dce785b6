// Package http exposes a handler chain over HTTP.
//
// The server creates a journey for each inbound request and dispatches it
// to the root handler of the chain, with the request path as target. It
// takes care of:
//   - Routing (health checks)
//   - Graceful shutdown
//   - Fault to status code mapping
//   - Logging
//   - Stats
package http
