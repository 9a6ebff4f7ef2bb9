package ui

import "time"

// refreshScheduler holds the one tick the frame loop wants run at the next
// refresh. Bubbletea delivers refreshes as frameMsg on its own goroutine, so
// ticks never overlap with Update or View.
type refreshScheduler struct {
	next  func(time.Time)
	armed bool // a frameMsg is in flight
}

func (s *refreshScheduler) Schedule(fn func(time.Time)) {
	s.next = fn
}

func (s *refreshScheduler) take() func(time.Time) {
	fn := s.next
	s.next = nil
	return fn
}

// arm reports whether a new frame command should be issued. One is needed
// when a tick is pending or keepAlive is set, and none is already on its way.
func (s *refreshScheduler) arm(keepAlive bool) bool {
	if s.armed || (s.next == nil && !keepAlive) {
		return false
	}
	s.armed = true
	return true
}

func (s *refreshScheduler) fired() { s.armed = false }
