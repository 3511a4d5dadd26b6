// Package heap implements a minimalist general-purpose allocator over a
// single-threaded, monotonically-growing arena: a region/freelist engine
// with coalescing and segregated power-of-two free lists. internal/brk and
// internal/dbg are its two external collaborators (the break-pointer
// primitive and the opaque debug/assert/log sink, respectively).
package heap

import (
	"github.com/heaplab/brkheap/internal/brk"
	"github.com/heaplab/brkheap/internal/dbg"
)

// noOffset is firstOff/lastOff's "arena is empty" sentinel.
const noOffset = ^uint32(0)

// Stats holds purely additive allocator instrumentation; nothing here ever
// feeds back into an allocation decision.
type Stats struct {
	AllocCalls       int64
	FreeCalls        int64
	GrowCalls        int64
	SplitCount       int64
	CoalesceForward  int64
	CoalesceBackward int64
	BytesAllocated   int64
	BytesFreed       int64
}

// Options configures a Heap. The zero value is valid: it builds a fresh
// real OS-backed arena and leaves the debug validator under
// internal/dbg.Enabled's control.
type Options struct {
	// Source supplies the break pointer. Nil selects the platform default
	// (internal/brk.New). Tests inject a *brk.FakeSource here.
	Source brk.Source

	// ReserveHint is passed through to brk.New as a capacity hint; it is
	// meaningless once Source is set explicitly.
	ReserveHint int

	// Validate forces the full invariant sweep (see debug.go) before and
	// after every public call, regardless of the BRKHEAP_DEBUG
	// environment variable.
	Validate bool
}

// Heap is a single arena's worth of region/freelist state — firstRegion,
// lastRegion, and freeLists[] — encapsulated as an instance rather than
// kept as package globals. The zero value is not usable; construct with
// New.
type Heap struct {
	src brk.Source

	// origin is the address that offset zero maps to. It starts as
	// src.Base() but is rebased to the aligned post-pad break the moment
	// the one-time alignment fixup runs (see allocateFreshRegion), so that
	// every offset-space alignUp elsewhere in this package stays equivalent
	// to address-space alignment.
	origin uintptr

	firstOff uint32 // noOffset if the arena is empty
	lastOff  uint32 // noOffset if the arena is empty

	freeLists [NumFreeLists]int32 // each entry is a region offset, or noRegion

	validate bool
	stats    Stats

	// firstAllocDone tracks whether the one-time, irrecoverable alignment
	// fixup has already run.
	firstAllocDone bool
}

// New constructs a Heap. Callers should Close it when done to release the
// underlying break-pointer source.
func New(opts Options) (*Heap, error) {
	src := opts.Source
	if src == nil {
		s, err := brk.New(opts.ReserveHint)
		if err != nil {
			return nil, err
		}
		src = s
	}
	h := &Heap{
		src:      src,
		origin:   src.Base(),
		firstOff: noOffset,
		lastOff:  noOffset,
		validate: opts.Validate || dbg.Enabled,
	}
	for i := range h.freeLists {
		h.freeLists[i] = noRegion
	}
	return h, nil
}

// Close releases the Heap's break-pointer source. It does not and cannot
// shrink the break back toward the OS.
func (h *Heap) Close() error {
	return h.src.Close()
}

// Reset wipes the heap back to the empty state without releasing the
// underlying address space, primarily for tests.
func (h *Heap) Reset() {
	h.firstOff = noOffset
	h.lastOff = noOffset
	for i := range h.freeLists {
		h.freeLists[i] = noRegion
	}
	h.firstAllocDone = false
	h.stats = Stats{}
}

// empty reports whether the region list has no members.
func (h *Heap) empty() bool {
	return h.firstOff == noOffset
}

// Stats returns a snapshot of the allocator's instrumentation counters.
func (h *Heap) Stats() Stats {
	return h.stats
}
