package heap

// tryFromFreeList looks for a FREE region able to hold size bytes of
// payload without growing the arena. size is the caller's raw, unaligned
// request. It runs a bounded near-fit probe into the class directly below
// the "big-enough" class, then a segregated sweep upward from the
// big-enough class itself.
func (h *Heap) tryFromFreeList(size uint32) (uint32, bool) {
	idx := bigEnoughIndex(size)

	// Near-fit probe: only meaningful when size is not itself a power of
	// two (so idx-1's members, which top out just under 2^idx, may still
	// be large enough) and when idx-1 is a real class.
	if idx > MinFreeListIndex && size < uint32(1)<<uint(idx) {
		if off, ok := h.probeNearFit(idx-1, size); ok {
			return h.takeFree(off, size), true
		}
	}

	// Segregated sweep: every class below the top holds only regions
	// guaranteed large enough by bigEnoughIndex's own definition, so the
	// first non-empty one wins outright. bigEnoughIndex caps at
	// NumFreeLists-1, so that top class is the catch-all for every size at
	// or above its floor; unlike the others it has no implicit upper bound
	// guarantee, so its head still needs a size check before being taken.
	for sc := idx; sc < NumFreeLists-1; sc++ {
		if h.freeLists[sc] != noRegion {
			return h.takeFree(uint32(h.freeLists[sc]), size), true
		}
	}
	if off, ok := h.probeNearFit(NumFreeLists-1, size); ok {
		return h.takeFree(off, size), true
	}
	return 0, false
}

// probeNearFit walks up to SpeculativeFreeListTries head-most entries of
// freeLists[classIdx], returning the first whose maxPayload is big enough.
func (h *Heap) probeNearFit(classIdx int, size uint32) (uint32, bool) {
	cur := h.freeLists[classIdx]
	for tries := 0; cur != noRegion && tries < SpeculativeFreeListTries; tries++ {
		off := uint32(cur)
		if h.maxPayload(off) >= size {
			return off, true
		}
		cur = h.links(off).nextOff
	}
	return 0, false
}

// takeFree removes off from whatever free-list class its current size
// implies, marks it USED with the given payload, and splits off any
// oversized tail. It returns off unchanged for chaining.
func (h *Heap) takeFree(off, size uint32) uint32 {
	h.removeFree(off)
	h.header(off).usedPayload = size
	h.possiblySplitRemainder(off, size)
	return off
}
