package store

import "time"

// SetClock replaces the timestamp source for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetLockWait shortens how long writers wait for the lock file.
func (s *Store) SetLockWait(d time.Duration) {
	s.lockWait = d
}
