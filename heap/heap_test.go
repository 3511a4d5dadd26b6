package heap

import (
	"testing"
	"unsafe"

	"github.com/heaplab/brkheap/internal/brk"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T, capacity uintptr) *Heap {
	t.Helper()
	h, err := New(Options{Source: brk.NewFake(capacity), Validate: true})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, h.Close()) })
	return h
}

func Test_Allocate_TinyRoundTrip(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p1, ok := h.Allocate(8)
	require.True(t, ok)
	require.NotZero(t, p1)

	p2, ok := h.Allocate(8)
	require.True(t, ok)
	require.Greater(t, p2, p1, "second allocation must land after the first")

	h.Release(p1)
	h.Release(p2)
	require.Equal(t, uint32(0), h.Info().Uordblks)
}

func Test_Allocate_ZeroSizeFails(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	ptr, ok := h.Allocate(0)
	require.False(t, ok)
	require.Zero(t, ptr)
}

func Test_Allocate_AdjacentGrowth(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p1, ok := h.Allocate(100)
	require.True(t, ok)
	p2, ok := h.Allocate(16)
	require.True(t, ok)
	p3, ok := h.Allocate(16)
	require.True(t, ok)

	require.Equal(t, p1+uintptr(alignUp(100)+MetadataSize), p2, "second region must immediately follow the first's rounded payload")
	require.Equal(t, p2+uintptr(alignUp(16)+MetadataSize), p3)
}

func Test_Release_CoalescesWithBothNeighbours(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p1, _ := h.Allocate(64)
	p2, _ := h.Allocate(64)
	p3, _ := h.Allocate(64)

	h.Release(p1)
	h.Release(p3)
	h.Release(p2) // must merge with both now-free neighbours into one region

	info := h.Info()
	require.Equal(t, uint32(1), info.Ordblks, "three adjacent frees must merge into a single free region")

	p4, ok := h.Allocate(64 + 64 + 64 + 2*MetadataSize)
	require.True(t, ok, "the merged region must be large enough to satisfy a request spanning all three originals")
	require.Equal(t, p1, p4)
}

func Test_Reallocate_ShrinkInPlace(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p, _ := h.Allocate(200)
	p2, ok := h.Reallocate(p, 32)
	require.True(t, ok)
	require.Equal(t, p, p2, "shrinking must not move the block")
}

func Test_Reallocate_ForwardMerge(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p1, _ := h.Allocate(32)
	p2, _ := h.Allocate(32)
	h.Release(p2)

	grown, ok := h.Reallocate(p1, 32+32+MetadataSize)
	require.True(t, ok)
	require.Equal(t, p1, grown, "growing into a free successor must not move the block")
}

func Test_Reallocate_MoveAndCopy(t *testing.T) {
	h := newTestHeap(t, 1<<20)

	p1, _ := h.Allocate(16)
	marker, ok := h.Allocate(16) // pins p1 so it cannot forward-merge or tail-extend
	require.True(t, ok)
	_ = marker

	b := (*[16]byte)(unsafe.Pointer(p1))
	for i := range b {
		b[i] = byte(i + 1)
	}

	moved, ok := h.Reallocate(p1, 4096)
	require.True(t, ok)
	require.NotEqual(t, p1, moved, "a block pinned by a live successor must move")

	mb := (*[16]byte)(unsafe.Pointer(moved))
	for i := range mb {
		require.Equal(t, byte(i+1), mb[i], "move-and-copy must preserve the original bytes")
	}
}

func Test_Reallocate_NilActsLikeAllocate(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	ptr, ok := h.Reallocate(0, 32)
	require.True(t, ok)
	require.NotZero(t, ptr)
}

func Test_Reallocate_ZeroSizeActsLikeRelease(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	p, _ := h.Allocate(32)
	ptr, ok := h.Reallocate(p, 0)
	require.False(t, ok)
	require.Zero(t, ptr)
	require.Equal(t, uint32(0), h.Info().Uordblks)
}

func Test_BreakFailure_LeavesHeapConsistent(t *testing.T) {
	src := brk.NewFake(4096)
	h, err := New(Options{Source: src, Validate: true})
	require.NoError(t, err)
	defer h.Close()

	p1, ok := h.Allocate(64)
	require.True(t, ok)

	src.Jam = true
	_, ok = h.Allocate(1 << 20)
	require.False(t, ok, "an oversized request against a jammed break must fail cleanly")

	// The heap must still be usable afterwards.
	p2, ok := h.Allocate(64)
	require.True(t, ok)
	require.NotEqual(t, p1, p2)
}

func Test_ZeroAllocate_ZeroesMemory(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	ptr, ok := h.ZeroAllocate(16, 4)
	require.True(t, ok)
	b := (*[64]byte)(unsafe.Pointer(ptr))
	for _, v := range b {
		require.Zero(t, v)
	}
}

func Test_ZeroAllocate_OverflowFails(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	_, ok := h.ZeroAllocate(1<<20, 1<<20)
	require.False(t, ok)
}

func Test_Reset_ReturnsToEmpty(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	_, ok := h.Allocate(64)
	require.True(t, ok)
	h.Reset()
	require.True(t, h.empty())
	require.Equal(t, Info{}, h.Info())
}

func Test_AllocateAligned_SatisfiesAlignment(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	for _, alignment := range []uint32{32, 64, 256, 4096} {
		ptr, ok := h.AllocateAligned(48, alignment)
		require.True(t, ok)
		require.Zero(t, ptr%uintptr(alignment), "alignment %d", alignment)
	}
}

func Test_AllocateAligned_RejectsNonPowerOfTwo(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	_, ok := h.AllocateAligned(48, 48)
	require.False(t, ok)
}

func Test_Walk_VisitsInAddressOrder(t *testing.T) {
	h := newTestHeap(t, 1<<20)
	h.Allocate(16)
	h.Allocate(32)
	h.Allocate(64)

	var addrs []uintptr
	h.Walk(func(r Region) bool {
		addrs = append(addrs, r.Addr)
		return true
	})
	require.Len(t, addrs, 3)
	for i := 1; i < len(addrs); i++ {
		require.Greater(t, addrs[i], addrs[i-1])
	}
}

func Test_UnalignedBreak_KeepsEverythingAligned(t *testing.T) {
	for _, misalign := range []uint32{1, 7, 8, 15} {
		src := brk.NewFakeMisaligned(1<<20, misalign)
		require.NotZero(t, src.Base()%Alignment, "misalign %d", misalign)

		h, err := New(Options{Source: src, Validate: true})
		require.NoError(t, err)

		p1, ok := h.Allocate(100)
		require.True(t, ok)
		require.Zero(t, p1%Alignment, "first payload must be aligned, misalign %d", misalign)

		// Free and re-allocate smaller, forcing possiblySplitRemainder to
		// carve a tail off the region born from the unaligned break.
		h.Release(p1)
		p2, ok := h.Allocate(10)
		require.True(t, ok)
		require.Zero(t, p2%Alignment, "reused payload must stay aligned, misalign %d", misalign)

		p3, ok := h.Allocate(40)
		require.True(t, ok)
		require.Zero(t, p3%Alignment, "tail split off the reused region must stay aligned, misalign %d", misalign)

		require.NoError(t, h.Close())
	}
}
