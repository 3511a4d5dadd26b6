package heap

// extendLastRegion grows the last region in place so its maxPayload is at
// least alignUp(size), requesting only the delta from the break source. On
// break failure it leaves all state untouched and returns false. Used both
// by newAllocation's tail-extension strategy and by Reallocate's in-place
// grow of the final region.
func (h *Heap) extendLastRegion(size uint32) bool {
	target := alignUp(size)
	cur := h.maxPayload(h.lastOff)
	if target > cur {
		delta := target - cur
		if _, ok := h.src.Sbrk(int32(delta)); !ok {
			return false
		}
		h.header(h.lastOff).totalSize += delta
		h.stats.GrowCalls++
	}
	h.header(h.lastOff).usedPayload = size
	return true
}

// newAllocation grows the arena to satisfy a request the free lists could
// not. size is the caller's raw, unaligned request.
func (h *Heap) newAllocation(size uint32) (uint32, bool) {
	if !h.empty() && h.isFree(h.lastOff) {
		off := h.lastOff
		h.removeFree(off)
		if h.extendLastRegion(size) {
			return off, true
		}
		// extendLastRegion left the region untouched, so file it back on
		// its free list; the caller treats this as an ordinary allocation
		// failure.
		h.insertFree(off)
		return 0, false
	}

	if !h.empty() && !h.isFree(h.lastOff) {
		off := h.lastOff
		hdr := h.header(off)
		used := alignUp(hdr.usedPayload)
		usable := h.maxPayload(off) - used
		if usable > 0 {
			need := int64(MetadataSize) + int64(alignUp(size)) - int64(usable)
			if need > 0 {
				if _, ok := h.src.Sbrk(int32(need)); !ok {
					return 0, false
				}
			}
			newOff := off + hdr.totalSize - usable
			hdr.totalSize -= usable
			h.initRegion(newOff, MetadataSize+alignUp(size), int32(off))
			h.header(newOff).usedPayload = size
			h.lastOff = newOff
			h.stats.GrowCalls++
			return newOff, true
		}
	}

	return h.allocateFreshRegion(size)
}

// allocateFreshRegion requests an entirely new region from the break
// source and links it in as the new last region. On the very first
// allocation ever made against this arena it first pads the break up to
// Alignment, a one-time, irrecoverable cost. All of this repository's
// offset arithmetic (alignUp on an offset, in split.go and elsewhere)
// is only address-aligned if offset zero itself maps to an aligned real
// address, so h.origin is rebased to the post-pad break here rather than
// left pinned to the source's original, possibly-unaligned base.
func (h *Heap) allocateFreshRegion(size uint32) (uint32, bool) {
	if h.empty() && !h.firstAllocDone {
		h.firstAllocDone = true
		cur := h.src.Brk()
		if rem := uint32(cur % Alignment); rem != 0 {
			pad := uint32(Alignment) - rem
			if _, ok := h.src.Sbrk(int32(pad)); !ok {
				return 0, false
			}
		}
		h.origin = h.src.Brk()
	}

	need := MetadataSize + alignUp(size)
	base, ok := h.src.Sbrk(int32(need))
	if !ok {
		return 0, false
	}

	off := h.offsetOf(base)
	prev := int32(noRegion)
	if !h.empty() {
		prev = int32(h.lastOff)
	}
	h.initRegion(off, need, prev)
	h.header(off).usedPayload = size

	if h.empty() {
		h.firstOff = off
	}
	h.lastOff = off
	h.stats.GrowCalls++
	return off, true
}
