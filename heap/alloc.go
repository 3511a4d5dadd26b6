package heap

import (
	"unsafe"
)

// Allocate reserves size bytes of payload and returns its address. It
// returns (0, false) if size is zero or the request cannot be satisfied;
// a zero-size request is never a region.
func (h *Heap) Allocate(size uint32) (ptr uintptr, ok bool) {
	if h.validate {
		h.checkInvariants()
		defer func() { h.checkInvariants() }()
	}
	if size == 0 {
		return 0, false
	}
	h.stats.AllocCalls++

	var off uint32
	if off, ok = h.tryFromFreeList(size); !ok {
		off, ok = h.newAllocation(size)
	}
	if !ok {
		return 0, false
	}
	h.stats.BytesAllocated += int64(size)
	return h.payloadAddr(off), true
}

// Release returns the region behind ptr to the allocator. Releasing the
// zero address is a no-op; releasing anything else is the caller's
// responsibility to have obtained from this Heap.
func (h *Heap) Release(ptr uintptr) {
	if ptr == 0 {
		return
	}
	if h.validate {
		h.checkInvariants()
		defer func() { h.checkInvariants() }()
	}
	off := h.regionFromPayload(ptr)
	h.stats.FreeCalls++
	h.stats.BytesFreed += int64(h.header(off).usedPayload)
	h.stopUsing(off)
}

// ZeroAllocate reserves space for n elements of size bytes each, zeroed,
// equivalent to calloc. It fails (rather than silently wrapping) if n*size
// overflows a 32-bit byte count.
func (h *Heap) ZeroAllocate(n, size uint32) (uintptr, bool) {
	total := uint64(n) * uint64(size)
	if total > uint64(^uint32(0)) {
		return 0, false
	}
	ptr, ok := h.Allocate(uint32(total))
	if !ok {
		return 0, false
	}
	zeroBytes(ptr, uint32(total))
	return ptr, true
}

// Reallocate resizes the region behind ptr to size bytes, trying in order:
// shrink in place, forward-merge with a free successor, tail-extend when
// ptr is the last region, or move-and-copy into a fresh allocation.
// ptr == 0 behaves like Allocate; size == 0 behaves like Release and
// returns (0, false).
func (h *Heap) Reallocate(ptr uintptr, size uint32) (newPtr uintptr, ok bool) {
	if ptr == 0 {
		return h.Allocate(size)
	}
	if size == 0 {
		h.Release(ptr)
		return 0, false
	}

	if h.validate {
		h.checkInvariants()
		defer func() { h.checkInvariants() }()
	}

	off := h.regionFromPayload(ptr)

	if size <= h.maxPayload(off) {
		h.header(off).usedPayload = size
		h.possiblySplitRemainder(off, size)
		return ptr, true
	}

	if h.hasNext(off) && h.isFree(h.nextOffset(off)) {
		next := h.nextOffset(off)
		h.removeFree(next)
		h.absorb(off, next)
		h.stats.CoalesceForward++
	}
	if size <= h.maxPayload(off) {
		h.header(off).usedPayload = size
		h.possiblySplitRemainder(off, size)
		return ptr, true
	}

	if off == h.lastOff && h.extendLastRegion(size) {
		return ptr, true
	}

	// Either off isn't the last region, or it is but the break couldn't
	// grow; either way a free region elsewhere in the arena may still
	// satisfy this request, so fall through to the general slow path
	// instead of failing outright.
	moved, allocated := h.Allocate(size)
	if !allocated {
		return 0, false
	}
	oldUsed := h.header(off).usedPayload
	copySize := oldUsed
	if size < copySize {
		copySize = size
	}
	copyBytes(moved, ptr, copySize)
	h.stopUsing(off)
	return moved, true
}

// Info reports aggregate arena statistics in the shape of the classic
// mallinfo() summary: total arena size, free-block count, bytes in use,
// and bytes free.
type Info struct {
	Arena    uint32
	Ordblks  uint32
	Uordblks uint32
	Fordblks uint32
}

// Info computes a fresh Info snapshot by walking the region list; it is
// O(regions), not cached.
func (h *Heap) Info() Info {
	if h.empty() {
		return Info{}
	}
	info := Info{Arena: uint32(h.src.Brk() - h.addr(h.firstOff))}
	off := h.firstOff
	for {
		hdr := h.header(off)
		if hdr.usedPayload != 0 {
			info.Uordblks += hdr.usedPayload
		} else {
			info.Fordblks += hdr.totalSize - MetadataSize
			info.Ordblks++
		}
		if off == h.lastOff {
			break
		}
		off = h.nextOffset(off)
	}
	return info
}

// Region is a read-only view of one region, surfaced by Walk.
type Region struct {
	Addr     uintptr
	Size     uint32
	Used     uint32
	IsFree   bool
	FreeList int
}

// Walk visits every region in address order, stopping early if visit
// returns false. It is a supplemental introspection primitive (not part of
// the original allocator's public contract) intended for heapstat and
// tests.
func (h *Heap) Walk(visit func(Region) bool) {
	if h.empty() {
		return
	}
	off := h.firstOff
	for {
		hdr := h.header(off)
		r := Region{
			Addr: h.payloadAddr(off),
			Size: hdr.totalSize - MetadataSize,
			Used: hdr.usedPayload,
		}
		if hdr.usedPayload == 0 {
			r.IsFree = true
			r.FreeList = h.classOf(off)
		}
		if !visit(r) {
			return
		}
		if off == h.lastOff {
			return
		}
		off = h.nextOffset(off)
	}
}

func zeroBytes(ptr uintptr, n uint32) {
	if n == 0 {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n)
	for i := range b {
		b[i] = 0
	}
}

func copyBytes(dst, src uintptr, n uint32) {
	if n == 0 {
		return
	}
	d := unsafe.Slice((*byte)(unsafe.Pointer(dst)), n)
	s := unsafe.Slice((*byte)(unsafe.Pointer(src)), n)
	copy(d, s)
}
