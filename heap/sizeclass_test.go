package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AlignUp(t *testing.T) {
	cases := map[uint32]uint32{
		0:   0,
		1:   16,
		15:  16,
		16:  16,
		17:  32,
		100: 112,
		112: 112,
	}
	for in, want := range cases {
		require.Equal(t, want, alignUp(in), "alignUp(%d)", in)
	}
}

func Test_IsPowerOfTwo(t *testing.T) {
	require.False(t, isPowerOfTwo(0))
	require.True(t, isPowerOfTwo(1))
	require.True(t, isPowerOfTwo(16))
	require.False(t, isPowerOfTwo(17))
	require.True(t, isPowerOfTwo(1<<20))
}

func Test_FreeListIndex_ClampsSmallSizes(t *testing.T) {
	require.Equal(t, MinFreeListIndex, freeListIndex(1))
	require.Equal(t, MinFreeListIndex, freeListIndex(AllocUnit))
	require.Equal(t, MinFreeListIndex, freeListIndex(AllocUnit+1))
	require.Equal(t, MinFreeListIndex+1, freeListIndex(2*AllocUnit))
}

func Test_FreeListIndex_ExactPowersOfTwo(t *testing.T) {
	require.Equal(t, 8, freeListIndex(256))
	require.Equal(t, 8, freeListIndex(257))
	require.Equal(t, 8, freeListIndex(511))
	require.Equal(t, 9, freeListIndex(512))
}

func Test_BigEnoughIndex(t *testing.T) {
	// A power of two's own class already guarantees members big enough.
	require.Equal(t, freeListIndex(256), bigEnoughIndex(256))
	// A non-power-of-two needs the next class up, since its own class may
	// contain smaller members.
	require.Equal(t, freeListIndex(300)+1, bigEnoughIndex(300))
}
