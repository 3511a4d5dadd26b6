package heap

// possiblySplitRemainder carves the unused tail off a region that was just
// marked USED with the given payload. off must already have usedPayload ==
// size when this is called. The tail, if any, is released through the
// normal free path so it can coalesce forward.
//
// splitOff is computed in offset space, which alignUp treats as
// equivalent to address space only because h.origin is itself kept
// Alignment-aligned (see allocateFreshRegion's one-time fixup).
func (h *Heap) possiblySplitRemainder(off, size uint32) {
	hdr := h.header(off)
	if hdr.totalSize-MetadataSize-size < MinRegionSize {
		return
	}

	splitOff := alignUp(off + MetadataSize + size)
	regionEnd := off + hdr.totalSize
	if regionEnd <= splitOff || regionEnd-splitOff < MinRegionSize {
		// Alignment rounding ate the remainder below MinRegionSize; it is
		// internal fragmentation now, not a region.
		return
	}

	tailTotal := regionEnd - splitOff
	wasLast := off == h.lastOff

	hdr.totalSize = splitOff - off
	h.initRegion(splitOff, tailTotal, int32(off))

	if wasLast {
		h.lastOff = splitOff
	} else {
		h.fixPrevLinkOfNext(splitOff)
	}

	h.stats.SplitCount++
	h.stopUsing(splitOff)
}
