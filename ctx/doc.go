// Package ctx defines the context types, which carry information defined
// for a specific scope (application, request, ...)
//
// The application context (ctx/app) is bound to every handler of a chain and
// gives it access to the logger, stats and configuration. The journey context
// (ctx/journey) is created by a connector for each inbound request and is
// passed down the chain along with the request.
package ctx
