// Package handler contains the request dispatch chain.
//
// A chain is a tree of handlers (H). Leaves process requests, and containers
// such as Collection own an ordered sequence of children to which they
// dispatch every request, in order.
//
// All handlers share the same lifecycle:
//
//	stopped -> starting -> started -> stopping -> stopped -> destroyed
//
// Containers propagate lifecycle transitions to their children, and they
// refuse any composition that would make a handler one of its own
// descendants.
//
// Children of a collection can be replaced while requests are in flight.
// Dispatch always works on an immutable snapshot of the sequence, so a
// request observes either the old or the new sequence, never a mix of both.
package handler
