// Package brk provides the break-pointer collaborator assumed by package heap:
// a single-caller, monotonically growing top-of-arena address.
//
// Callers request more address space with Sbrk and read the current break
// with Brk. A failed request returns ok == false; the heap package treats
// that exactly like the classic brk(2) failure sentinel (void*)-1 and never
// mutates state on that path.
package brk

import "errors"

// ErrClosed is returned by a Source that has already been closed.
var ErrClosed = errors.New("brk: source is closed")

// Source is the external break-pointer collaborator. Implementations must
// be monotonic (Sbrk never accepts a negative delta) and single-caller
// (concurrent use is undefined, matching package heap's own concurrency
// model).
type Source interface {
	// Sbrk grows the break by delta bytes and returns the break's prior
	// value. delta must be >= 0. ok is false if the request could not be
	// satisfied (e.g. the reservation is exhausted); on failure the break
	// is left unchanged.
	Sbrk(delta int32) (prevBreak uintptr, ok bool)

	// Brk reports the current break without growing it (brk(0) in the
	// classic C contract).
	Brk() uintptr

	// Base reports the address of the first byte ever made available,
	// i.e. the break's value at construction time.
	Base() uintptr

	// Close releases any OS resources backing the source. After Close,
	// Sbrk and Brk must not be called.
	Close() error
}
