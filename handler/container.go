package handler

import "sync"

// Container is a handler which owns child handlers
type Container interface {
	H

	// Handlers returns the direct children
	Handlers() []H
	// ChildHandlers returns all descendants
	ChildHandlers() []H
}

// Expand walks c depth-first and returns all descendants accepted by match,
// in sequence order. A nil match accepts everything.
//
// Containers are always walked through, whether they match or not.
func Expand(c Container, match func(H) bool) []H {
	var l []H
	for _, h := range c.Handlers() {
		if match == nil || match(h) {
			l = append(l, h)
		}
		if cc, ok := h.(Container); ok {
			l = append(l, Expand(cc, match)...)
		}
	}
	return l
}

// ChildHandlersByType returns all descendants of c of type T
func ChildHandlersByType[T any](c Container) []T {
	var l []T
	for _, h := range Expand(c, nil) {
		if v, ok := h.(T); ok {
			l = append(l, v)
		}
	}
	return l
}

// Contains returns whether h is a descendant of c
func Contains(c Container, h H) bool {
	for _, d := range c.ChildHandlers() {
		if d == h {
			return true
		}
	}
	return false
}

// graphMu serialises the publication of children across all containers
var graphMu sync.Mutex

// Publish checks that every handler of l can become a child of parent, then
// calls store. Checks and stores of concurrent calls do not interleave, so
// that two containers cannot adopt each other at the same time.
//
// Containers must publish their children through it. store must not block.
func Publish(parent H, l []H, store func()) error {
	graphMu.Lock()
	defer graphMu.Unlock()

	for _, h := range l {
		if err := CheckComposition(parent, h); err != nil {
			return err
		}
	}
	store()
	return nil
}

// CheckComposition returns an error when h cannot become a child of parent,
// either because it is nil or because parent would become its own descendant
func CheckComposition(parent, h H) error {
	if h == nil {
		return &CompositionError{Handler: h, Err: ErrNilHandler}
	}
	if h == parent {
		return &CompositionError{Handler: h, Err: ErrLoop}
	}
	if c, ok := h.(Container); ok && Contains(c, parent) {
		return &CompositionError{Handler: h, Err: ErrLoop}
	}
	return nil
}
