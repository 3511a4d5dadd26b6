package brk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_FakeSource_MonotonicGrowth(t *testing.T) {
	s := NewFake(4096)
	base := s.Base()
	require.Equal(t, base, s.Brk())

	prev, ok := s.Sbrk(256)
	require.True(t, ok)
	require.Equal(t, base, prev)
	require.Equal(t, base+256, s.Brk())

	prev, ok = s.Sbrk(256)
	require.True(t, ok)
	require.Equal(t, base+256, prev)
	require.Equal(t, base+512, s.Brk())
}

func Test_FakeSource_RefusesPastCapacity(t *testing.T) {
	s := NewFake(1024)
	_, ok := s.Sbrk(2048)
	require.False(t, ok)
	require.Equal(t, s.Base(), s.Brk(), "break must not move on failure")
}

func Test_FakeSource_RefusesNegativeDelta(t *testing.T) {
	s := NewFake(1024)
	_, ok := s.Sbrk(-1)
	require.False(t, ok)
}

func Test_FakeSource_Jam(t *testing.T) {
	s := NewFake(4096)
	s.Jam = true
	_, ok := s.Sbrk(64)
	require.False(t, ok)
	require.False(t, s.Jam, "Jam is a one-shot trigger")

	_, ok = s.Sbrk(64)
	require.True(t, ok, "subsequent requests should succeed once unjammed")
}

func Test_FakeSource_ClosedRefusesGrowth(t *testing.T) {
	s := NewFake(4096)
	require.NoError(t, s.Close())
	_, ok := s.Sbrk(8)
	require.False(t, ok)
}
