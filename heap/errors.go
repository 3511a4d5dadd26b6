package heap

import "errors"

// ErrInvalidAlignment is returned by cmd/heapstat's aligned subcommand
// when AllocateAligned's alignment argument is not a power of two. The
// allocator's core allocate/release/reallocate surface never returns an
// error value itself (failure is always the (0, false) sentinel pair,
// matching a classic malloc's NULL), but this one validated argument check
// is worth naming.
var ErrInvalidAlignment = errors.New("heap: alignment must be a power of two")
