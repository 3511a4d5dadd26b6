package heap

// absorb grows dst to swallow its immediate successor victim, which must
// already be unlinked from any free list. It fixes up lastOff or the
// region after victim's prevOffset, whichever applies.
func (h *Heap) absorb(dst, victim uint32) {
	dstHdr := h.header(dst)
	dstHdr.totalSize += h.header(victim).totalSize
	if victim == h.lastOff {
		h.lastOff = dst
	} else {
		h.fixPrevLinkOfNext(dst)
	}
}

// mergeIntoExistingFreeRegion implements the coalescing protocol: absorb a
// free neighbour on either side. off must already be marked free
// (usedPayload == 0) and not yet filed on any free list. It reports
// whether a merge happened (a merged region is filed here); the caller is
// responsible for filing the unchanged region when it returns false.
func (h *Heap) mergeIntoExistingFreeRegion(off uint32) bool {
	if h.hasPrev(off) {
		prev := h.prevOffset(off)
		if h.isFree(prev) {
			origNext, hasNext := uint32(0), false
			if h.hasNext(off) {
				origNext, hasNext = h.nextOffset(off), true
			}

			h.removeFree(prev)
			h.absorb(prev, off)

			// off may itself have been bookended by a second free region
			// (this happens when a split's tail lands next to an
			// already-free neighbour); no-adjacent-frees guarantees at most
			// one more hop.
			if hasNext && h.isFree(origNext) {
				h.removeFree(origNext)
				h.absorb(prev, origNext)
			}

			h.insertFree(prev)
			h.stats.CoalesceBackward++
			return true
		}
	}

	if h.hasNext(off) {
		next := h.nextOffset(off)
		if h.isFree(next) {
			h.removeFree(next)
			h.absorb(off, next)
			h.insertFree(off)
			h.stats.CoalesceForward++
			return true
		}
	}

	return false
}

// stopUsing is the standard release path: mark off free, then either
// coalesce it into a neighbour or file it as-is.
func (h *Heap) stopUsing(off uint32) {
	h.header(off).usedPayload = 0
	if !h.mergeIntoExistingFreeRegion(off) {
		h.insertFree(off)
	}
}
