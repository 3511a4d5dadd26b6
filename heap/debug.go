package heap

import "github.com/heaplab/brkheap/internal/dbg"

// Check runs the full structural and free-list invariant sweep and panics,
// via internal/dbg.Assert, on the first violation found. It runs in
// O(regions + free-list entries), has no side effects, and is safe to call
// as often as desired. New never invokes it; it runs automatically only on
// a validating Heap (Options.Validate or BRKHEAP_DEBUG), where every public
// operation calls it on entry and exit.
func (h *Heap) Check() {
	h.checkInvariants()
}

func (h *Heap) checkInvariants() {
	if h.empty() {
		dbg.Assert(h.lastOff == noOffset, "lastOff must be none when firstOff is none")
		for i, head := range h.freeLists {
			dbg.Assert(head == noRegion, "free list %d non-empty on an empty heap", i)
		}
		return
	}

	brkNow := h.src.Brk()
	seenFree := make(map[uint32]bool)

	off := h.firstOff
	hasPrev := false
	var prevOff uint32
	for steps := 0; ; steps++ {
		dbg.Assert(steps < 100_000_000, "region list walk did not terminate")

		hdr := h.header(off)
		dbg.Assert(hdr.magic == regionMagic, "region at offset %d missing its magic tag", off)
		dbg.Assert(hdr.totalSize >= MinRegionSize, "region %d totalSize %d below MinRegionSize", off, hdr.totalSize)
		dbg.Assert(hdr.totalSize%Alignment == 0, "region %d totalSize %d is not an alignment multiple", off, hdr.totalSize)
		dbg.Assert(hdr.usedPayload <= hdr.totalSize-MetadataSize, "region %d usedPayload %d exceeds its maxPayload", off, hdr.usedPayload)
		dbg.Assert(h.addr(off)+uintptr(hdr.totalSize) <= brkNow, "region %d extends past the current break", off)

		if hasPrev {
			dbg.Assert(int32(prevOff) == hdr.prevOffset, "region %d prevOffset does not match its actual predecessor", off)
		} else {
			dbg.Assert(hdr.prevOffset == noRegion, "first region must have prevOffset == noRegion")
			dbg.Assert(h.addr(off)%Alignment == 0, "first region's base address is not aligned")
		}

		free := hdr.usedPayload == 0
		if free {
			if hasPrev {
				dbg.Assert(!h.isFree(prevOff), "two adjacent free regions at offsets %d and %d", prevOff, off)
			}
			seenFree[off] = true
		}

		if off == h.lastOff {
			break
		}
		next := h.nextOffset(off)
		dbg.Assert(h.header(next).prevOffset == int32(off), "contiguity broken: region %d's successor does not point back to it", off)

		prevOff, hasPrev = off, true
		off = next
	}

	for i, head := range h.freeLists {
		cur := head
		for cur != noRegion {
			entry := uint32(cur)
			dbg.Assert(seenFree[entry], "free list %d holds offset %d which the region list does not mark free", i, entry)
			dbg.Assert(freeListIndex(h.maxPayload(entry)) == i, "region %d misfiled: belongs in class %d, found in class %d", entry, freeListIndex(h.maxPayload(entry)), i)
			delete(seenFree, entry)
			cur = h.links(entry).nextOff
		}
	}
	dbg.Assert(len(seenFree) == 0, "region list has free regions that are not filed on any free list")
}
