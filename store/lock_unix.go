//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris || aix

package store

import "golang.org/x/sys/unix"

// advisoryLock takes a best-effort, non-blocking exclusive flock on the
// backing file. It is informational only: cross-process safety is a
// non-goal, so a failure to acquire the lock is logged, never fatal.
func (s *Store) advisoryLock() {
	if err := unix.Flock(int(s.f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		s.logger.Printf("store: %s: advisory lock unavailable (%v), continuing without it", s.path, err)
	}
}
