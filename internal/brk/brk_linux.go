//go:build linux

package brk

import (
	"sync"

	"golang.org/x/sys/unix"
)

// linuxSource drives the real process break pointer via brk(2). Go's own
// allocator never touches brk on Linux (it is mmap-based), so under the
// single-caller assumption this package requires, extending the break
// directly is safe.
type linuxSource struct {
	mu     sync.Mutex
	base   uintptr
	brk    uintptr
	closed bool
}

// New returns a Source backed by the real brk(2) syscall. capacityHint is
// ignored on Linux; it exists only to keep the constructor signature
// uniform across platforms.
func New(capacityHint int) (Source, error) {
	cur, _, errno := unix.RawSyscall(unix.SYS_BRK, 0, 0, 0)
	if errno != 0 {
		return nil, errno
	}
	return &linuxSource{base: cur, brk: cur}, nil
}

func (s *linuxSource) Sbrk(delta int32) (uintptr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || delta < 0 {
		return 0, false
	}
	if delta == 0 {
		return s.brk, true
	}
	want := s.brk + uintptr(delta)
	got, _, errno := unix.RawSyscall(unix.SYS_BRK, want, 0, 0)
	if errno != 0 || got < want {
		// Kernel could not extend the break that far: sentinel failure,
		// state unchanged.
		return 0, false
	}
	prev := s.brk
	s.brk = got
	return prev, true
}

func (s *linuxSource) Brk() uintptr  { return s.brk }
func (s *linuxSource) Base() uintptr { return s.base }

func (s *linuxSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
