package cache

import "time"

// SetClock replaces the freshness clock for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
